package main

import (
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var errorColor = color.New(color.FgRed, color.Bold)

var rootCmd = &cobra.Command{
	Use:   "abc-tokenizer",
	Short: "Tokenizer and parser for ABC notation tune bodies",
	Long: `abc-tokenizer converts an ABC notation tune body into an ordered stream
of resolved musical tokens: metadata fields, bar lines, tuplet markers,
broken rhythm markers, notes, and chords.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func main() {
	rootCmd.AddCommand(tokenizeCmd)
	rootCmd.AddCommand(voicesCmd)
	rootCmd.AddCommand(titleCmd)
	rootCmd.AddCommand(versionCmd)

	if err := rootCmd.Execute(); err != nil {
		errorColor.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
