package main

import (
	"github.com/spf13/cobra"
)

var lexiconCmd = &cobra.Command{
	Use:   "lexicon",
	Short: "Print the lexicon tables as JSON",
	Long: `Print the lexicon tables in use as JSON.

The output can be edited and passed back with --lexicon to try
additional corrections, units or aliases without rebuilding.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		lex, err := loadLexicon()
		if err != nil {
			return err
		}
		return printJSON(cmd, lex.Tables())
	},
}
