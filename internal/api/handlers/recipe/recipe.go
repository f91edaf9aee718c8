package recipe

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	recipeService "recipe-calculator/internal/core/recipe"
	"recipe-calculator/internal/pkg/common"
)

// Handler 食材解析處理程序
type Handler struct {
	service *recipeService.Service
}

// NewHandler 創建新的食材解析處理程序
func NewHandler(service *recipeService.Service) *Handler {
	return &Handler{service: service}
}

// HandleParseImage 上傳食譜照片，辨識文字後解析食材
func (h *Handler) HandleParseImage(c *gin.Context) {
	data, source, err := readImage(c)
	if err != nil {
		respondError(c, err)
		return
	}

	common.LogInfo("開始處理圖片解析請求",
		zap.String("request_id", requestid.Get(c)),
		zap.String("source", source),
		zap.Int("bytes", len(data)),
	)

	resp, err := h.service.ParseImage(c.Request.Context(), data)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// HandleParseURL 抓取食譜網頁並解析食材
// 網址來自查詢參數 url，或 JSON {"url": ...}
func (h *Handler) HandleParseURL(c *gin.Context) {
	rawURL := c.Query("url")
	if rawURL == "" && c.ContentType() == gin.MIMEJSON {
		var req URLRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondError(c, bodyError(err, "invalid JSON body"))
			return
		}
		rawURL = req.URL
	}
	if strings.TrimSpace(rawURL) == "" {
		respondError(c, common.ErrInvalidRequest.Wrap(errors.New("missing url")))
		return
	}

	common.LogInfo("開始處理網址解析請求",
		zap.String("request_id", requestid.Get(c)),
		zap.String("url", rawURL),
	)

	resp, err := h.service.ParseURL(c.Request.Context(), rawURL)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// HandleParseText 解析貼上的文字或食材字串列表
func (h *Handler) HandleParseText(c *gin.Context) {
	var req TextRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, bodyError(err, "invalid JSON body"))
		return
	}
	if req.Text == "" && len(req.Lines) == 0 {
		respondError(c, common.ErrInvalidRequest.Wrap(errors.New("either text or lines is required")))
		return
	}

	if len(req.Lines) > 0 {
		c.JSON(http.StatusOK, h.service.ParseLines(req.Lines))
		return
	}
	c.JSON(http.StatusOK, h.service.ParseText(req.Text))
}

// HandleTestParsing 以固定範例行檢查解析器
func (h *Handler) HandleTestParsing(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"test_results": h.service.SampleResults(),
	})
}

// HandleTestTitle 只擷取網頁標題；失敗時以 200 回傳 {"error": ...}
func (h *Handler) HandleTestTitle(c *gin.Context) {
	rawURL := c.Query("url")
	if rawURL == "" {
		respondError(c, common.ErrInvalidRequest.Wrap(errors.New("missing url")))
		return
	}

	probe, err := h.service.ProbeTitle(c.Request.Context(), rawURL)
	if err != nil {
		common.LogWarn("標題擷取失敗",
			zap.String("url", rawURL),
			zap.Error(err),
		)
		c.JSON(http.StatusOK, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, probe)
}
