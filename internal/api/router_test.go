package api

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"image"
	"image/color"
	"image/png"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	imageSvc "recipe-calculator/internal/core/image"
	"recipe-calculator/internal/core/cache"
	"recipe-calculator/internal/core/lexicon"
	"recipe-calculator/internal/core/ocr"
	"recipe-calculator/internal/core/parser"
	recipeService "recipe-calculator/internal/core/recipe"
	"recipe-calculator/internal/core/scraper"
	"recipe-calculator/internal/infrastructure/config"
	"recipe-calculator/internal/pkg/common"
)

type fakeOCR struct {
	text string
}

func (f *fakeOCR) Extract(_ context.Context, _ []byte) (string, error) {
	return f.text, nil
}

type fakePages struct {
	page *scraper.Page
	err  error
}

func (f *fakePages) Scrape(_ context.Context, rawURL string) (*scraper.Page, error) {
	if f.err != nil {
		return nil, f.err
	}
	page := *f.page
	page.URL = rawURL
	return &page, nil
}

func (f *fakePages) ProbeTitle(_ context.Context, _ string) (string, string, error) {
	if f.err != nil {
		return "", "", f.err
	}
	return f.page.Title, f.page.PageTitle, nil
}

func init() {
	gin.SetMode(gin.TestMode)
}

func testConfig() *config.Config {
	cfg := config.Default()
	cfg.RateLimit.Enabled = false
	return cfg
}

func newTestRouter(t *testing.T, cfg *config.Config, ocrText string, pages *fakePages) *gin.Engine {
	t.Helper()

	if pages == nil {
		pages = &fakePages{page: &scraper.Page{
			Title:       "Boller i karry",
			PageTitle:   "Boller i karry | Madbloggen",
			Ingredients: []common.Ingredient{{Name: "hakket svinekød", Amount: "500", Unit: "gram"}},
		}}
	}

	store := cache.NewManager(config.CacheConfig{MaxSize: 16, TTL: cfg.Cache.TTL})
	t.Cleanup(func() { _ = store.Close() })

	svc := recipeService.NewService(
		parser.New(lexicon.Danish()),
		imageSvc.NewService(cfg.Image),
		&fakeOCR{text: ocrText},
		pages,
		store,
	)

	router, err := SetupRouter(testContext(t), cfg, Services{
		Recipes: svc,
		OCR:     ocr.NewService(nil, cfg.OCR),
	})
	require.NoError(t, err)
	return router
}

func pngBytes(t *testing.T) []byte {
	t.Helper()
	img := image.NewGray(image.Rect(0, 0, 8, 8))
	for i := range img.Pix {
		img.Pix[i] = 255
	}
	img.SetGray(2, 2, color.Gray{Y: 0})

	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func multipartRequest(t *testing.T, field string, data []byte) *http.Request {
	t.Helper()
	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	part, err := w.CreateFormFile(field, "recipe.png")
	require.NoError(t, err)
	_, err = part.Write(data)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, "/parse-image", &body)
	req.Header.Set("Content-Type", w.FormDataContentType())
	return req
}

func jsonRequest(method, target, body string) *http.Request {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func serve(router *gin.Engine, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decodeRecipe(t *testing.T, w *httptest.ResponseRecorder) common.RecipeResponse {
	t.Helper()
	var resp common.RecipeResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) common.ErrorResponse {
	t.Helper()
	var resp common.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func TestParseImage_Multipart(t *testing.T) {
	router := newTestRouter(t, testConfig(), "6 fed hvidløg\n2 dl mælk", nil)

	w := serve(router, multipartRequest(t, "file", pngBytes(t)))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	resp := decodeRecipe(t, w)
	assert.True(t, resp.Success)
	assert.Nil(t, resp.RecipeName)
	assert.Equal(t, []common.Ingredient{
		{Name: "hvidløg", Amount: "6", Unit: "fed"},
		{Name: "mælk", Amount: "2", Unit: "deciliter"},
	}, resp.Ingredients)
	assert.NotContains(t, w.Body.String(), "recipeName")
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
}

func TestParseImage_DataURL(t *testing.T) {
	router := newTestRouter(t, testConfig(), "500 g pasta", nil)

	dataURL := "data:image/png;base64," + base64.StdEncoding.EncodeToString(pngBytes(t))
	w := serve(router, jsonRequest(http.MethodPost, "/parse-image", `{"image":"`+dataURL+`"}`))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	resp := decodeRecipe(t, w)
	assert.Equal(t, []common.Ingredient{{Name: "pasta", Amount: "500", Unit: "gram"}}, resp.Ingredients)
}

func TestParseImage_NoIngredients(t *testing.T) {
	router := newTestRouter(t, testConfig(), "mere\n", nil)

	w := serve(router, multipartRequest(t, "file", pngBytes(t)))
	require.Equal(t, http.StatusOK, w.Code)

	resp := decodeRecipe(t, w)
	assert.False(t, resp.Success)
	assert.Empty(t, resp.Ingredients)
	require.NotNil(t, resp.Error)
	assert.Equal(t, common.MsgNoIngredientsInImage, *resp.Error)
}

func TestParseImage_BadInput(t *testing.T) {
	tests := []struct {
		name     string
		req      func(t *testing.T) *http.Request
		wantCode string
	}{
		{
			name:     "not an image",
			req:      func(t *testing.T) *http.Request { return multipartRequest(t, "file", []byte("hello")) },
			wantCode: "INVALID_IMAGE_FORMAT",
		},
		{
			name:     "wrong field",
			req:      func(t *testing.T) *http.Request { return multipartRequest(t, "upload", pngBytes(t)) },
			wantCode: common.ErrCodeInvalidRequest,
		},
		{
			name: "not a data url",
			req: func(t *testing.T) *http.Request {
				return jsonRequest(http.MethodPost, "/parse-image", `{"image":"https://example.dk/a.png"}`)
			},
			wantCode: "INVALID_IMAGE_FORMAT",
		},
		{
			name:     "empty json",
			req:      func(t *testing.T) *http.Request { return jsonRequest(http.MethodPost, "/parse-image", `{}`) },
			wantCode: common.ErrCodeInvalidRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := newTestRouter(t, testConfig(), "", nil)

			w := serve(router, tt.req(t))
			assert.Equal(t, http.StatusBadRequest, w.Code)
			errResp := decodeError(t, w)
			assert.Equal(t, tt.wantCode, errResp.Code)
			assert.NotEmpty(t, errResp.Detail)
		})
	}
}

func TestParseImage_OCRUnavailable(t *testing.T) {
	cfg := testConfig()
	svc := recipeService.NewService(
		parser.New(lexicon.Danish()),
		imageSvc.NewService(cfg.Image),
		ocr.NewService(nil, cfg.OCR),
		&fakePages{},
		nil,
	)
	router, err := SetupRouter(testContext(t), cfg, Services{Recipes: svc})
	require.NoError(t, err)

	w := serve(router, multipartRequest(t, "file", pngBytes(t)))
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "OCR_UNAVAILABLE", decodeError(t, w).Code)
}

func TestParseImage_TooLarge(t *testing.T) {
	router := newTestRouter(t, testConfig(), "", nil)

	req := httptest.NewRequest(http.MethodPost, "/parse-image", bytes.NewReader(make([]byte, 16<<20)))
	req.Header.Set("Content-Type", "application/octet-stream")

	w := serve(router, req)
	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
	assert.Equal(t, common.ErrCodePayloadTooLarge, decodeError(t, w).Code)
}

func TestParseURL(t *testing.T) {
	router := newTestRouter(t, testConfig(), "", nil)

	w := serve(router, httptest.NewRequest(http.MethodPost, "/parse-url?url=https://example.dk/boller", nil))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	resp := decodeRecipe(t, w)
	assert.True(t, resp.Success)
	require.NotNil(t, resp.RecipeName)
	assert.Equal(t, "Boller i karry", *resp.RecipeName)
	assert.Len(t, resp.Ingredients, 1)
}

func TestParseURL_JSONBody(t *testing.T) {
	router := newTestRouter(t, testConfig(), "", nil)

	w := serve(router, jsonRequest(http.MethodPost, "/parse-url", `{"url":"https://example.dk/boller"}`))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.True(t, decodeRecipe(t, w).Success)
}

func TestParseURL_NoIngredients(t *testing.T) {
	pages := &fakePages{page: &scraper.Page{Title: "Velkommen til bloggen"}}
	router := newTestRouter(t, testConfig(), "", pages)

	w := serve(router, httptest.NewRequest(http.MethodPost, "/parse-url?url=https://example.dk/", nil))
	require.Equal(t, http.StatusOK, w.Code)

	resp := decodeRecipe(t, w)
	assert.False(t, resp.Success)
	require.NotNil(t, resp.RecipeName)
	assert.Equal(t, "Velkommen til bloggen", *resp.RecipeName)
	require.NotNil(t, resp.Error)
	assert.Equal(t, common.MsgNoIngredientsOnPage, *resp.Error)
}

func TestParseURL_Errors(t *testing.T) {
	tests := []struct {
		name     string
		target   string
		pages    *fakePages
		wantCode string
	}{
		{name: "missing url", target: "/parse-url", wantCode: common.ErrCodeInvalidRequest},
		{name: "bad scheme", target: "/parse-url?url=ftp://example.dk", wantCode: "INVALID_URL"},
		{
			name:     "fetch failed",
			target:   "/parse-url?url=https://example.dk/404",
			pages:    &fakePages{err: common.ErrFetchFailed.Wrap(assert.AnError)},
			wantCode: "FETCH_FAILED",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := newTestRouter(t, testConfig(), "", tt.pages)

			w := serve(router, httptest.NewRequest(http.MethodPost, tt.target, nil))
			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.Equal(t, tt.wantCode, decodeError(t, w).Code)
		})
	}
}

func TestParseURL_Deduplicated(t *testing.T) {
	router := newTestRouter(t, testConfig(), "", nil)

	first := serve(router, httptest.NewRequest(http.MethodPost, "/parse-url?url=https://example.dk/a", nil))
	second := serve(router, httptest.NewRequest(http.MethodPost, "/parse-url?url=https://example.dk/a", nil))
	other := serve(router, httptest.NewRequest(http.MethodPost, "/parse-url?url=https://example.dk/b", nil))

	assert.Equal(t, http.StatusOK, first.Code)
	assert.Equal(t, http.StatusTooManyRequests, second.Code)
	assert.Equal(t, http.StatusOK, other.Code)
}

func TestParseText(t *testing.T) {
	router := newTestRouter(t, testConfig(), "", nil)

	w := serve(router, jsonRequest(http.MethodPost, "/parse-text", `{"text":"Ingredienser:\n1 tsk salt\nKog vandet"}`))
	require.Equal(t, http.StatusOK, w.Code)
	resp := decodeRecipe(t, w)
	assert.Contains(t, resp.Ingredients, common.Ingredient{Name: "salt", Amount: "1", Unit: "teske"})

	w = serve(router, jsonRequest(http.MethodPost, "/parse-text", `{"lines":["2 dl mælk","2 dl mælk"]}`))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decodeRecipe(t, w).Ingredients, 1)

	w = serve(router, jsonRequest(http.MethodPost, "/parse-text", `{}`))
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = serve(router, jsonRequest(http.MethodPost, "/parse-text", `not json`))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestTestParsing(t *testing.T) {
	router := newTestRouter(t, testConfig(), "", nil)

	w := serve(router, httptest.NewRequest(http.MethodGet, "/test-parsing", nil))
	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		TestResults []struct {
			Original string             `json:"original"`
			Parsed   *common.Ingredient `json:"parsed"`
		} `json:"test_results"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.Len(t, body.TestResults, len(parser.SampleLines))
	assert.Equal(t, "6 fed hvidløg", body.TestResults[0].Original)
	assert.NotNil(t, body.TestResults[0].Parsed)
	assert.Nil(t, body.TestResults[len(body.TestResults)-1].Parsed)
	assert.Contains(t, w.Body.String(), `"parsed":null`)
}

func TestTestTitle(t *testing.T) {
	router := newTestRouter(t, testConfig(), "", nil)

	w := serve(router, httptest.NewRequest(http.MethodGet, "/test-title?url=https://example.dk/boller", nil))
	require.Equal(t, http.StatusOK, w.Code)

	var probe recipeService.TitleProbe
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &probe))
	assert.Equal(t, "https://example.dk/boller", probe.URL)
	require.NotNil(t, probe.ExtractedTitle)
	assert.Equal(t, "Boller i karry", *probe.ExtractedTitle)
	require.NotNil(t, probe.PageTitle)
	assert.Equal(t, "Boller i karry | Madbloggen", *probe.PageTitle)
}

func TestTestTitle_ErrorIsReported(t *testing.T) {
	pages := &fakePages{err: common.ErrFetchFailed.Wrap(assert.AnError)}
	router := newTestRouter(t, testConfig(), "", pages)

	w := serve(router, httptest.NewRequest(http.MethodGet, "/test-title?url=https://example.dk/", nil))
	require.Equal(t, http.StatusOK, w.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.NotEmpty(t, body["error"])
}

func TestHealth(t *testing.T) {
	router := newTestRouter(t, testConfig(), "", nil)

	w := serve(router, httptest.NewRequest(http.MethodGet, "/health", nil))
	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Status string      `json:"status"`
		OCR    *ocr.Status `json:"ocr"`
		Cache  *cache.Stats
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "degraded", body.Status)
	require.NotNil(t, body.OCR)
	assert.False(t, body.OCR.Available)
	require.NotNil(t, body.Cache)
	assert.Equal(t, config.CacheBackendMemory, body.Cache.Backend)

	for _, path := range []string{"/ready", "/live"} {
		w = serve(router, httptest.NewRequest(http.MethodGet, path, nil))
		assert.Equal(t, http.StatusOK, w.Code, path)
	}
}

func TestRateLimit(t *testing.T) {
	cfg := testConfig()
	cfg.RateLimit.Enabled = true
	cfg.RateLimit.Requests = 1
	cfg.RateLimit.Burst = 1
	router := newTestRouter(t, cfg, "", nil)

	first := serve(router, httptest.NewRequest(http.MethodGet, "/test-parsing", nil))
	second := serve(router, httptest.NewRequest(http.MethodGet, "/test-parsing", nil))

	assert.Equal(t, http.StatusOK, first.Code)
	assert.Equal(t, http.StatusTooManyRequests, second.Code)
	assert.NotEmpty(t, second.Header().Get("Retry-After"))

	// 健康檢查不受限流影響
	w := serve(router, httptest.NewRequest(http.MethodGet, "/live", nil))
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestCORS(t *testing.T) {
	router := newTestRouter(t, testConfig(), "", nil)

	req := httptest.NewRequest(http.MethodOptions, "/parse-url", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	w := serve(router, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "http://localhost:3000", w.Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest(http.MethodGet, "/live", nil)
	req.Header.Set("Origin", "https://evil.example")
	w = serve(router, req)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

// testContext 測試結束時取消，讓中間件停止背景清理
func testContext(t *testing.T) context.Context {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	return ctx
}

func TestSetupRouter_RequiresRecipeService(t *testing.T) {
	_, err := SetupRouter(testContext(t), testConfig(), Services{})
	assert.Error(t, err)
}
