package recipe

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"recipe-calculator/internal/core/cache"
	"recipe-calculator/internal/core/lexicon"
	"recipe-calculator/internal/core/parser"
	"recipe-calculator/internal/core/scraper"
	"recipe-calculator/internal/infrastructure/config"
	"recipe-calculator/internal/pkg/common"
)

type fakeImages struct {
	calls int
	err   error
}

func (f *fakeImages) Prepare(data []byte) ([]byte, error) {
	f.calls++
	return data, f.err
}

type fakeOCR struct {
	text  string
	err   error
	calls int
}

func (f *fakeOCR) Extract(_ context.Context, _ []byte) (string, error) {
	f.calls++
	return f.text, f.err
}

type fakePages struct {
	page      *scraper.Page
	err       error
	calls     int
	title     string
	pageTitle string
}

func (f *fakePages) Scrape(_ context.Context, rawURL string) (*scraper.Page, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	page := *f.page
	page.URL = rawURL
	return &page, nil
}

func (f *fakePages) ProbeTitle(_ context.Context, _ string) (string, string, error) {
	return f.title, f.pageTitle, f.err
}

func newTestService(images ImagePreparer, ocr TextExtractor, pages PageScraper) *Service {
	store := cache.NewManager(config.CacheConfig{MaxSize: 16, TTL: time.Hour})
	return NewService(parser.New(lexicon.Danish()), images, ocr, pages, store)
}

func TestParseImage(t *testing.T) {
	images := &fakeImages{}
	ocr := &fakeOCR{text: "Ingredienser\n6 fed hviøg\n2 dl mælk\nRør det hele sammen\n2 dl mælk\n"}
	svc := newTestService(images, ocr, &fakePages{})

	resp, err := svc.ParseImage(context.Background(), []byte("image-bytes"))
	require.NoError(t, err)

	assert.True(t, resp.Success)
	assert.Nil(t, resp.RecipeName)
	assert.Nil(t, resp.Error)
	assert.Equal(t, []common.Ingredient{
		{Name: "ingredienser", Amount: "?", Unit: ""},
		{Name: "hvidløg", Amount: "6", Unit: "fed"},
		{Name: "mælk", Amount: "2", Unit: "deciliter"},
	}, resp.Ingredients)

	// 同一張圖片第二次直接由快取回傳
	again, err := svc.ParseImage(context.Background(), []byte("image-bytes"))
	require.NoError(t, err)
	assert.Equal(t, resp, again)
	assert.Equal(t, 1, ocr.calls)
	assert.Equal(t, int64(1), svc.CacheStats().Hits)
}

func TestParseImage_NoIngredients(t *testing.T) {
	svc := newTestService(&fakeImages{}, &fakeOCR{text: "styrke\n\n"}, &fakePages{})

	resp, err := svc.ParseImage(context.Background(), []byte("x"))
	require.NoError(t, err)
	assert.False(t, resp.Success)
	assert.Empty(t, resp.Ingredients)
	assert.NotNil(t, resp.Ingredients)
	require.NotNil(t, resp.Error)
	assert.Equal(t, common.MsgNoIngredientsInImage, *resp.Error)
}

func TestParseImage_Errors(t *testing.T) {
	images := &fakeImages{err: common.ErrInvalidImageFormat}
	ocr := &fakeOCR{}
	svc := newTestService(images, ocr, &fakePages{})

	_, err := svc.ParseImage(context.Background(), []byte("x"))
	assert.True(t, errors.Is(err, common.ErrInvalidImageFormat))
	assert.Equal(t, 0, ocr.calls)

	svc = newTestService(&fakeImages{}, &fakeOCR{err: common.ErrOCRFailed}, &fakePages{})
	_, err = svc.ParseImage(context.Background(), []byte("x"))
	assert.True(t, errors.Is(err, common.ErrOCRFailed))
}

func TestParseURL(t *testing.T) {
	pages := &fakePages{page: &scraper.Page{
		Title:       "Kylling i karry",
		Ingredients: []common.Ingredient{{Name: "kylling", Amount: "500", Unit: "gram"}},
		Strategy:    scraper.StrategyJSONLD,
	}}
	svc := newTestService(&fakeImages{}, &fakeOCR{}, pages)

	resp, err := svc.ParseURL(context.Background(), "https://example.dk/opskrift")
	require.NoError(t, err)
	assert.True(t, resp.Success)
	require.NotNil(t, resp.RecipeName)
	assert.Equal(t, "Kylling i karry", *resp.RecipeName)
	assert.Len(t, resp.Ingredients, 1)

	_, err = svc.ParseURL(context.Background(), " https://example.dk/opskrift ")
	require.NoError(t, err)
	assert.Equal(t, 1, pages.calls)
}

func TestParseURL_LogsCandidateCount(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	previous := common.Logger
	common.Logger = zap.New(core)
	t.Cleanup(func() { common.Logger = previous })

	pages := &fakePages{page: &scraper.Page{
		Ingredients: []common.Ingredient{
			{Name: "kylling", Amount: "500", Unit: "gram"},
			{Name: "karry", Amount: "2", Unit: "spiseskefuld"},
		},
		Candidates: 5,
		Strategy:   scraper.StrategySelector,
	}}
	svc := newTestService(&fakeImages{}, &fakeOCR{}, pages)

	_, err := svc.ParseURL(context.Background(), "https://example.dk/karry")
	require.NoError(t, err)

	entries := logs.FilterMessage("食材解析完成").All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	assert.Equal(t, "url", fields["來源"])
	assert.Equal(t, int64(5), fields["候選行數"])
	assert.Equal(t, int64(2), fields["食材數量"])
}

func TestParseURL_NoIngredientsKeepsTitle(t *testing.T) {
	pages := &fakePages{page: &scraper.Page{Title: "Forside"}}
	svc := newTestService(&fakeImages{}, &fakeOCR{}, pages)

	for i := 0; i < 2; i++ {
		resp, err := svc.ParseURL(context.Background(), "https://example.dk/")
		require.NoError(t, err)
		assert.False(t, resp.Success)
		require.NotNil(t, resp.RecipeName)
		assert.Equal(t, "Forside", *resp.RecipeName)
		require.NotNil(t, resp.Error)
		assert.Equal(t, common.MsgNoIngredientsOnPage, *resp.Error)
	}
	// 失敗結果不快取
	assert.Equal(t, 2, pages.calls)
}

func TestParseURL_Errors(t *testing.T) {
	pages := &fakePages{err: common.ErrFetchFailed.Wrap(errors.New("dial tcp: refused"))}
	svc := newTestService(&fakeImages{}, &fakeOCR{}, pages)

	_, err := svc.ParseURL(context.Background(), "ftp://example.dk")
	assert.True(t, errors.Is(err, common.ErrInvalidURL))
	assert.Equal(t, 0, pages.calls)

	_, err = svc.ParseURL(context.Background(), "https://example.dk")
	assert.True(t, errors.Is(err, common.ErrFetchFailed))
}

func TestParseTextAndLines(t *testing.T) {
	svc := NewService(parser.New(lexicon.Danish()), nil, nil, nil, nil)

	resp := svc.ParseText("500 g pasta\n1 tsk salt")
	assert.True(t, resp.Success)
	assert.Len(t, resp.Ingredients, 2)

	resp = svc.ParseLines([]string{"2 dl mælk", "2 dl mælk"})
	assert.Equal(t, []common.Ingredient{{Name: "mælk", Amount: "2", Unit: "deciliter"}}, resp.Ingredients)

	resp = svc.ParseText("")
	assert.False(t, resp.Success)
	require.NotNil(t, resp.Error)
	assert.Equal(t, common.MsgNoIngredientsInText, *resp.Error)

	assert.Nil(t, svc.CacheStats())
}

func TestSampleResults(t *testing.T) {
	svc := NewService(parser.New(lexicon.Danish()), nil, nil, nil, nil)

	results := svc.SampleResults()
	require.Len(t, results, len(parser.SampleLines))

	assert.Equal(t, "6 fed hvidløg", results[0].Original)
	require.NotNil(t, results[0].Parsed)
	assert.Equal(t, common.Ingredient{Name: "hvidløg", Amount: "6", Unit: "fed"}, *results[0].Parsed)

	last := results[len(results)-1]
	assert.Equal(t, "mere", last.Original)
	assert.Nil(t, last.Parsed)
}

func TestProbeTitle(t *testing.T) {
	svc := newTestService(&fakeImages{}, &fakeOCR{}, &fakePages{pageTitle: "Madbloggen"})

	probe, err := svc.ProbeTitle(context.Background(), "https://example.dk")
	require.NoError(t, err)
	assert.Equal(t, "https://example.dk", probe.URL)
	assert.Nil(t, probe.ExtractedTitle)
	require.NotNil(t, probe.PageTitle)
	assert.Equal(t, "Madbloggen", *probe.PageTitle)
}
