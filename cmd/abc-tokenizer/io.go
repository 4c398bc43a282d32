package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/tunebook/abc-tokenizer/pkg/abc"
	"github.com/vmihailenco/msgpack/v5"
	"gopkg.in/yaml.v3"
)

// readInput reads the whole tune body from a file, or from stdin when no
// path was given.
func readInput(path string) (string, error) {
	if path == "" {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return "", fmt.Errorf("failed to read from stdin: %w", err)
		}
		return string(data), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read file '%s': %w", path, err)
	}
	return string(data), nil
}

// openOutput opens the output file, or hands back stdout when no path was
// given. The returned close function is a no-op for stdout.
func openOutput(path string) (io.Writer, func() error, error) {
	if path == "" {
		return os.Stdout, func() error { return nil }, nil
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create file '%s': %w", path, err)
	}
	return f, f.Close, nil
}

// resolveDialect loads the dialect rules file when one was given,
// otherwise returns the default dialect.
func resolveDialect(path string) (*abc.Dialect, error) {
	if path == "" {
		return abc.DefaultDialect(), nil
	}
	rules, err := abc.LoadDialectFile(path)
	if err != nil {
		return nil, err
	}
	return abc.ApplyDialectToDefaults(rules)
}

// writeTokens emits the token stream: JSON one object per line, a single
// YAML document, or a raw msgpack blob.
func writeTokens(w io.Writer, tokens []*abc.Token, format string) error {
	switch format {
	case "json":
		for _, tok := range tokens {
			data, err := json.Marshal(tok)
			if err != nil {
				return fmt.Errorf("failed to marshal token: %w", err)
			}
			if _, err := fmt.Fprintln(w, string(data)); err != nil {
				return err
			}
		}
		return nil
	case "yaml":
		data, err := yaml.Marshal(tokens)
		if err != nil {
			return fmt.Errorf("failed to marshal tokens: %w", err)
		}
		_, err = w.Write(data)
		return err
	case "msgpack":
		data, err := msgpack.Marshal(tokens)
		if err != nil {
			return fmt.Errorf("failed to marshal tokens: %w", err)
		}
		_, err = w.Write(data)
		return err
	}
	return fmt.Errorf("unknown format '%s' (expected json, yaml, or msgpack)", format)
}

// writeGroups emits grouped token lists in the requested format. JSON
// puts one group per line to keep the stream greppable.
func writeGroups(w io.Writer, groups [][]*abc.Token, format string) error {
	switch format {
	case "json":
		for _, group := range groups {
			data, err := json.Marshal(group)
			if err != nil {
				return fmt.Errorf("failed to marshal group: %w", err)
			}
			if _, err := fmt.Fprintln(w, string(data)); err != nil {
				return err
			}
		}
		return nil
	case "yaml":
		data, err := yaml.Marshal(groups)
		if err != nil {
			return fmt.Errorf("failed to marshal groups: %w", err)
		}
		_, err = w.Write(data)
		return err
	case "msgpack":
		data, err := msgpack.Marshal(groups)
		if err != nil {
			return fmt.Errorf("failed to marshal groups: %w", err)
		}
		_, err = w.Write(data)
		return err
	}
	return fmt.Errorf("unknown format '%s' (expected json, yaml, or msgpack)", format)
}
