package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/tunebook/abc-tokenizer/pkg/abc"
)

var titleCmd = &cobra.Command{
	Use:   "title",
	Short: "Print the title of an ABC tune body",
	Args:  cobra.NoArgs,
	RunE:  runTitle,
}

func init() {
	titleCmd.Flags().String("input", "", "input file (defaults to stdin)")
	titleCmd.Flags().String("dialect", "", "YAML dialect rules file (optional)")
}

func runTitle(cmd *cobra.Command, _ []string) error {
	inputFile, _ := cmd.Flags().GetString("input")
	dialectFile, _ := cmd.Flags().GetString("dialect")

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
	title, err := h.Title()
	if err != nil {
		return err
	}
	if title == nil {
		return fmt.Errorf("tune has no T: field")
	}
	fmt.Fprintln(cmd.OutOrStdout(), *title)
	return nil
}
