package handlers

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/jsamuelsen/quote-generator/internal/adapters/http/dto"
	"github.com/jsamuelsen/quote-generator/internal/adapters/http/middleware"
	"github.com/jsamuelsen/quote-generator/internal/adapters/quotefile"
	"github.com/jsamuelsen/quote-generator/internal/app"
)

// QuoteHandler handles quote, category and session endpoints.
type QuoteHandler struct {
	service *app.QuoteService
}

// NewQuoteHandler creates a new quote handler.
func NewQuoteHandler(service *app.QuoteService) *QuoteHandler {
	return &QuoteHandler{
		service: service,
	}
}

// GetRandomQuote handles GET /api/v1/quotes/random
// Picks from the selected category; a category query parameter overrides it
// (an empty value means all quotes). The pick becomes the last viewed quote
// of the caller's X-Session-ID; a request without one records nothing.
//
// @Summary Get a random quote
// @Tags quotes
// @Produce json
// @Param category query string false "Category override"
// @Success 200 {object} dto.PickResponse
// @Failure 404 {object} dto.ErrorResponse "EMPTY_RESULT"
// @Router /api/v1/quotes/random [get]
func (h *QuoteHandler) GetRandomQuote(c *gin.Context) {
	category, override := c.GetQuery("category")

	pick, err := h.service.Random(c.Request.Context(), app.RandomQuery{
		SessionID:        middleware.GetClientSessionID(c),
		Category:         category,
		OverrideCategory: override,
	})
	if err != nil {
		dto.HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.PickResponse{
		Quote: dto.NewQuoteResponse(pick.Quote),
		Index: pick.Index,
	})
}

// ListQuotes handles GET /api/v1/quotes
//
// @Summary List quotes
// @Tags quotes
// @Produce json
// @Param category query string false "Category filter"
// @Param limit query int false "Page size (1-100)"
// @Param cursor query string false "Cursor from a previous page"
// @Success 200 {object} dto.PaginatedResponse[dto.QuoteResponse]
// @Failure 400 {object} dto.ErrorResponse
// @Router /api/v1/quotes [get]
func (h *QuoteHandler) ListQuotes(c *gin.Context) {
	var req dto.ListQuotesRequest
	if err := dto.BindQueryAndValidate(c, &req); err != nil {
		dto.RespondWithBindingError(c, err)
		return
	}

	category := strings.TrimSpace(req.Category)
	quotes := h.service.List(c.Request.Context(), category)

	page, err := dto.Paginate(dto.NewQuoteResponses(quotes), req.PaginationRequest, category)
	if err != nil {
		dto.RespondWithErrorCode(c, dto.ErrorCodeBadRequest, err.Error())
		return
	}

	c.JSON(http.StatusOK, page)
}

// AddQuote handles POST /api/v1/quotes
//
// @Summary Add a quote
// @Tags quotes
// @Accept json
// @Produce json
// @Param quote body dto.AddQuoteRequest true "Quote"
// @Success 201 {object} dto.QuoteResponse
// @Failure 400 {object} dto.ErrorResponse
// @Router /api/v1/quotes [post]
func (h *QuoteHandler) AddQuote(c *gin.Context) {
	var req dto.AddQuoteRequest
	if err := dto.BindAndValidate(c, &req); err != nil {
		dto.RespondWithBindingError(c, err)
		return
	}

	quote, err := h.service.Add(c.Request.Context(), req.Text, req.Category)
	if err != nil {
		dto.HandleError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.NewQuoteResponse(quote))
}

// ImportQuotes handles POST /api/v1/quotes/import
// The body is a JSON array of quotes or an object with a quotes array.
//
// @Summary Import quotes
// @Tags quotes
// @Accept json
// @Produce json
// @Success 200 {object} dto.ImportResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 413 {object} dto.ErrorResponse
// @Router /api/v1/quotes/import [post]
func (h *QuoteHandler) ImportQuotes(c *gin.Context) {
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			dto.RespondWithErrorCode(c, dto.ErrorCodeTooLarge,
				fmt.Sprintf("import file exceeds %d bytes", maxErr.Limit))
			return
		}
		dto.RespondWithErrorCode(c, dto.ErrorCodeBadRequest, "request body could not be read")
		return
	}

	candidates, err := quotefile.ParseImport(body)
	if err != nil {
		dto.HandleError(c, err)
		return
	}

	ctx := c.Request.Context()

	n, err := h.service.Import(ctx, candidates)
	if err != nil {
		dto.HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ImportResponse{
		Imported: n,
		Total:    len(h.service.List(ctx, "")),
	})
}

// ExportQuotes handles GET /api/v1/quotes/export
// Serves the whole store as a pretty-printed quotes.json download.
//
// @Summary Export quotes
// @Tags quotes
// @Produce json
// @Success 200 {array} dto.QuoteResponse
// @Router /api/v1/quotes/export [get]
func (h *QuoteHandler) ExportQuotes(c *gin.Context) {
	data, err := quotefile.MarshalPretty(h.service.Export(c.Request.Context()))
	if err != nil {
		dto.HandleError(c, err)
		return
	}

	c.Header("Content-Disposition", `attachment; filename="`+quotefile.FileName+`"`)
	c.Data(http.StatusOK, "application/json; charset=utf-8", data)
}

// ListCategories handles GET /api/v1/categories
//
// @Summary List categories
// @Tags categories
// @Produce json
// @Success 200 {object} dto.CategoriesResponse
// @Router /api/v1/categories [get]
func (h *QuoteHandler) ListCategories(c *gin.Context) {
	cats := h.service.Categories(c.Request.Context())

	c.JSON(http.StatusOK, dto.CategoriesResponse{
		Categories: cats.Categories,
		Selected:   cats.Selected,
	})
}

// SelectCategory handles PUT /api/v1/categories/selected
// An empty category clears the filter. Unknown categories are accepted.
//
// @Summary Select the active category
// @Tags categories
// @Accept json
// @Produce json
// @Param body body dto.SelectCategoryRequest true "Category"
// @Success 200 {object} dto.CategoriesResponse
// @Failure 400 {object} dto.ErrorResponse
// @Router /api/v1/categories/selected [put]
func (h *QuoteHandler) SelectCategory(c *gin.Context) {
	var req dto.SelectCategoryRequest
	if err := dto.BindAndValidate(c, &req); err != nil {
		dto.RespondWithBindingError(c, err)
		return
	}

	ctx := c.Request.Context()
	h.service.SelectCategory(ctx, req.Category)
	cats := h.service.Categories(ctx)

	c.JSON(http.StatusOK, dto.CategoriesResponse{
		Categories: cats.Categories,
		Selected:   cats.Selected,
	})
}

// GetLastViewed handles GET /api/v1/session/last-viewed
//
// @Summary Last random pick of this session
// @Tags session
// @Produce json
// @Param X-Session-ID header string false "Session ID"
// @Success 200 {object} dto.PickResponse
// @Failure 404 {object} dto.ErrorResponse
// @Router /api/v1/session/last-viewed [get]
func (h *QuoteHandler) GetLastViewed(c *gin.Context) {
	viewed, err := h.service.LastViewed(c.Request.Context(), middleware.GetSessionID(c))
	if err != nil {
		dto.HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.PickResponse{
		Quote: dto.NewQuoteResponse(viewed.Quote),
		Index: viewed.Index,
	})
}

// RegisterQuoteRoutes registers quote, category and session routes on the given router group.
func (h *QuoteHandler) RegisterQuoteRoutes(rg *gin.RouterGroup) {
	quotes := rg.Group("/quotes")
	quotes.GET("", h.ListQuotes)
	quotes.POST("", h.AddQuote)
	quotes.GET("/random", h.GetRandomQuote)
	quotes.POST("/import", h.ImportQuotes)
	quotes.GET("/export", h.ExportQuotes)

	categories := rg.Group("/categories")
	categories.GET("", h.ListCategories)
	categories.PUT("/selected", h.SelectCategory)

	rg.GET("/session/last-viewed", h.GetLastViewed)
}
