package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"recipe-calculator/internal/core/lexicon"
	"recipe-calculator/internal/core/parser"
	"recipe-calculator/internal/infrastructure/config"
	"recipe-calculator/internal/pkg/common"
)

var (
	logLevel    string
	pretty      bool
	lexiconFile string
)

var rootCmd = &cobra.Command{
	Use:   "ingredients",
	Short: "Extract Danish recipe ingredients from text, web pages and photos",
	Long: `ingredients runs the same parser as the HTTP service from the command line.

Examples:
  ingredients parse-text opskrift.txt
  pbpaste | ingredients parse-text -
  ingredients parse-url https://www.valdemarsro.dk/boller-i-karry/
  ingredients parse-image opskrift.jpg
  ingredients lexicon --pretty`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		common.InitConsoleLogger(logLevel)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "warn", "log level: debug, info, warn or error")
	rootCmd.PersistentFlags().BoolVar(&pretty, "pretty", false, "indent JSON output")
	rootCmd.PersistentFlags().StringVar(&lexiconFile, "lexicon", "", "JSON lexicon tables replacing the built-in Danish lexicon")

	rootCmd.AddCommand(parseTextCmd, parseURLCmd, parseImageCmd, lexiconCmd)
}

// loadConfig 讀取環境變數設定，失敗時回傳錯誤
func loadConfig() (*config.Config, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return cfg, nil
}

// loadLexicon 使用 --lexicon 指定的詞庫，未指定時使用內建丹麥文詞庫
func loadLexicon() (*lexicon.Lexicon, error) {
	if lexiconFile == "" {
		return lexicon.Danish(), nil
	}

	f, err := os.Open(lexiconFile)
	if err != nil {
		return nil, fmt.Errorf("failed to open lexicon: %w", err)
	}
	defer f.Close()

	var tables lexicon.Tables
	if err := common.DecodeJSON(f, &tables); err != nil {
		return nil, fmt.Errorf("failed to parse lexicon %s: %w", lexiconFile, err)
	}
	return lexicon.New(tables), nil
}

func newParser() (*parser.Parser, error) {
	lex, err := loadLexicon()
	if err != nil {
		return nil, err
	}
	return parser.New(lex), nil
}

func printJSON(cmd *cobra.Command, v interface{}) error {
	return common.WriteJSON(cmd.OutOrStdout(), v, pretty)
}
