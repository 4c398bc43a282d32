package main

import (
	"github.com/spf13/cobra"
	"github.com/tunebook/abc-tokenizer/pkg/abc"
)

var voicesCmd = &cobra.Command{
	Use:   "voices",
	Short: "Split a processed tune body into voice groups",
	Long: `Voices processes an ABC tune body and emits one token group per voice:
the shared header first, then one group per numbered V: field. Tunes
with fewer than two voice markers come out as a single group.`,
	Args: cobra.NoArgs,
	RunE: runVoices,
}

func init() {
	voicesCmd.Flags().String("input", "", "input file (defaults to stdin)")
	voicesCmd.Flags().String("output", "", "output file (defaults to stdout)")
	voicesCmd.Flags().String("dialect", "", "YAML dialect rules file (optional)")
	voicesCmd.Flags().String("format", "json", "output format (json|yaml|msgpack)")
}

func runVoices(cmd *cobra.Command, _ []string) error {
	inputFile, _ := cmd.Flags().GetString("input")
	outputFile, _ := cmd.Flags().GetString("output")
	dialectFile, _ := cmd.Flags().GetString("dialect")
	format, _ := cmd.Flags().GetString("format")

	input, err := readInput(inputFile)
	if err != nil {
		return err
	}
	dialect, err := resolveDialect(dialectFile)
	if err != nil {
		return err
	}
	h, err := abc.ProcessStringWithDialect(input, dialect)
	if err != nil {
		return err
	}
	groups, err := h.SplitByVoice()
	if err != nil {
		return err
	}

	w, closeOutput, err := openOutput(outputFile)
	if err != nil {
		return err
	}
	if err := writeGroups(w, groups, format); err != nil {
		_ = closeOutput()
		return err
	}
	return closeOutput()
}
