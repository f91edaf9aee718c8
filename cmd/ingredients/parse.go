package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"recipe-calculator/internal/core/image"
	"recipe-calculator/internal/core/ocr"
	"recipe-calculator/internal/core/recipe"
	"recipe-calculator/internal/core/scraper"
	"recipe-calculator/internal/pkg/common"
)

// 同時抓取的網址數量
const urlConcurrency = 4

var parseTextCmd = &cobra.Command{
	Use:   "parse-text [file|-]",
	Short: "Parse ingredients from a text file or stdin",
	Long: `Parse ingredients from plain text, one ingredient per line.

Lines that look like instructions, headings longer than ten words
and lines shorter than three characters are skipped. Reads stdin
when the argument is "-" or omitted.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		text, err := readInput(cmd, args)
		if err != nil {
			return err
		}

		p, err := newParser()
		if err != nil {
			return err
		}

		svc := recipe.NewService(p, nil, nil, nil, nil)
		return printJSON(cmd, svc.ParseText(text))
	},
}

// urlResult 單一網址的解析結果
type urlResult struct {
	URL    string                 `json:"url"`
	Result *common.RecipeResponse `json:"result,omitempty"`
	Error  string                 `json:"error,omitempty"`
}

var parseURLCmd = &cobra.Command{
	Use:   "parse-url <url>...",
	Short: "Fetch recipe pages and parse their ingredients",
	Long: fmt.Sprintf(`Fetch one or more recipe pages and parse their ingredients.

Pages are fetched concurrently (at most %d at a time). A failing page
is reported in its own result and does not stop the others.`, urlConcurrency),
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		p, err := newParser()
		if err != nil {
			return err
		}

		pages := scraper.New(scraper.NewFetcher(cfg.Scraper), scraper.NewExtractor(p))
		svc := recipe.NewService(p, nil, nil, pages, nil)

		results := make([]urlResult, len(args))
		g, ctx := errgroup.WithContext(cmd.Context())
		g.SetLimit(urlConcurrency)

		for i, rawURL := range args {
			g.Go(func() error {
				results[i].URL = rawURL
				resp, err := svc.ParseURL(ctx, rawURL)
				if err != nil {
					common.LogWarn("網址解析失敗", zap.String("url", rawURL), zap.Error(err))
					results[i].Error = err.Error()
					return nil
				}
				results[i].Result = resp
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return err
		}

		if len(results) == 1 {
			if results[0].Error != "" {
				return fmt.Errorf("%s: %s", results[0].URL, results[0].Error)
			}
			return printJSON(cmd, results[0].Result)
		}
		return printJSON(cmd, results)
	},
}

var parseImageCmd = &cobra.Command{
	Use:   "parse-image <file>",
	Short: "Run OCR on a recipe photo and parse its ingredients",
	Long: `Run OCR on a recipe photo and parse its ingredients.

The image is converted to grayscale, binarized and denoised before
recognition. Requires tesseract with Danish language data, either
linked in (build tag "ocr") or as the tesseract command on PATH.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		p, err := newParser()
		if err != nil {
			return err
		}

		data, err := os.ReadFile(args[0])
		if err != nil {
			return fmt.Errorf("failed to read image: %w", err)
		}

		engine, err := ocr.NewEngine(cfg.OCR)
		if err != nil {
			return err
		}
		ocrService := ocr.NewService(engine, cfg.OCR)
		defer ocrService.Close()

		svc := recipe.NewService(
			p,
			image.NewService(cfg.Image),
			ocrService,
			nil,
			nil,
		)
		resp, err := svc.ParseImage(cmd.Context(), data)
		if err != nil {
			return err
		}
		return printJSON(cmd, resp)
	},
}

// readInput 讀取檔案，參數為 "-" 或省略時讀取 stdin
func readInput(cmd *cobra.Command, args []string) (string, error) {
	if len(args) == 0 || args[0] == "-" {
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return "", fmt.Errorf("failed to read stdin: %w", err)
		}
		return string(data), nil
	}

	data, err := os.ReadFile(args[0])
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", args[0], err)
	}
	return string(data), nil
}
