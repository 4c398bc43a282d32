package main

import (
	"os"

	"github.com/spf13/cobra"
	"github.com/tunebook/abc-tokenizer/pkg/abc"
)

var tokenizeCmd = &cobra.Command{
	Use:   "tokenize",
	Short: "Tokenize an ABC tune body",
	Long: `Tokenize reads an ABC tune body from a file or stdin and emits the
resolved token stream. With --raw the handler passes are skipped and the
tokens come out unparsed.`,
	Args: cobra.NoArgs,
	RunE: runTokenize,
}

func init() {
	tokenizeCmd.Flags().String("input", "", "input file (defaults to stdin)")
	tokenizeCmd.Flags().String("output", "", "output file (defaults to stdout)")
	tokenizeCmd.Flags().String("dialect", "", "YAML dialect rules file (optional)")
	tokenizeCmd.Flags().String("format", "json", "output format (json|yaml|msgpack)")
	tokenizeCmd.Flags().Bool("raw", false, "emit raw tokens without running the handler passes")
	tokenizeCmd.Flags().Bool("exit0", false, "exit with code 0 even on tokenization errors")
}

func runTokenize(cmd *cobra.Command, _ []string) error {
	inputFile, _ := cmd.Flags().GetString("input")
	outputFile, _ := cmd.Flags().GetString("output")
	dialectFile, _ := cmd.Flags().GetString("dialect")
	format, _ := cmd.Flags().GetString("format")
	raw, _ := cmd.Flags().GetBool("raw")
	exit0, _ := cmd.Flags().GetBool("exit0")

	input, err := readInput(inputFile)
	if err != nil {
		return err
	}
	dialect, err := resolveDialect(dialectFile)
	if err != nil {
		return err
	}

	var tokens []*abc.Token
	if raw {
		tokens, err = abc.NewTokenizerWithDialect(input, dialect).Tokenize()
	} else {
		var h *abc.Handler
		h, err = abc.ProcessStringWithDialect(input, dialect)
		if h != nil {
			tokens = h.Tokens()
		}
	}
	if err != nil {
		if exit0 {
			errorColor.Fprintf(os.Stderr, "Warning: %v\n", err)
			return nil
		}
		return err
	}

	w, closeOutput, err := openOutput(outputFile)
	if err != nil {
		return err
	}
	if err := writeTokens(w, tokens, format); err != nil {
		_ = closeOutput()
		return err
	}
	return closeOutput()
}
