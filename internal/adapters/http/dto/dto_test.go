package dto

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"reflect"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jsamuelsen/quote-generator/internal/domain"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newTestContext(method, target, body string) (*gin.Context, *httptest.ResponseRecorder) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(method, target, strings.NewReader(body))
	c.Request.Header.Set("Content-Type", "application/json")
	return c, w
}

func TestHTTPStatusFromCode(t *testing.T) {
	tests := map[string]int{
		ErrorCodeNotFound:    http.StatusNotFound,
		ErrorCodeEmptyResult: http.StatusNotFound,
		ErrorCodeConflict:    http.StatusConflict,
		ErrorCodeValidation:  http.StatusBadRequest,
		ErrorCodeBadRequest:  http.StatusBadRequest,
		ErrorCodeUnavailable: http.StatusServiceUnavailable,
		ErrorCodeTimeout:     http.StatusGatewayTimeout,
		ErrorCodeTooLarge:    http.StatusRequestEntityTooLarge,
		ErrorCodeInternal:    http.StatusInternalServerError,
		"SOMETHING_ELSE":     http.StatusInternalServerError,
	}

	for code, want := range tests {
		t.Run(code, func(t *testing.T) {
			assert.Equal(t, want, HTTPStatusFromCode(code))
		})
	}
}

func TestErrorResponse_Constructors(t *testing.T) {
	resp := NewErrorResponseWithDetails(ErrorCodeValidation, "bad", map[string]string{"text": "required"}).
		WithTraceID("t-1")

	data, err := json.Marshal(resp)
	require.NoError(t, err)
	assert.JSONEq(t,
		`{"error":{"code":"VALIDATION_ERROR","message":"bad","details":{"text":"required"}},"traceId":"t-1"}`,
		string(data))

	data, err = json.Marshal(NewErrorResponse(ErrorCodeInternal, "x"))
	require.NoError(t, err)
	assert.JSONEq(t, `{"error":{"code":"INTERNAL_ERROR","message":"x"}}`, string(data))
}

func TestGetTraceID(t *testing.T) {
	tests := []struct {
		name  string
		setup func(*gin.Context)
		want  string
	}{
		{name: "from telemetry", setup: func(c *gin.Context) { c.Set("trace_id", "trace-1") }, want: "trace-1"},
		{name: "from request header", setup: func(c *gin.Context) { c.Request.Header.Set("X-Request-ID", "req-2") }, want: "req-2"},
		{
			name: "telemetry wins",
			setup: func(c *gin.Context) {
				c.Set("trace_id", "trace-1")
				c.Request.Header.Set("X-Request-ID", "req-2")
			},
			want: "trace-1",
		},
		{name: "wrong type", setup: func(c *gin.Context) { c.Set("trace_id", 7) }},
		{name: "none", setup: func(*gin.Context) {}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, _ := newTestContext(http.MethodGet, "/", "")
			tt.setup(c)
			assert.Equal(t, tt.want, GetTraceID(c))
		})
	}
}

func TestHandleError(t *testing.T) {
	tests := []struct {
		name        string
		err         error
		wantStatus  int
		wantCode    string
		wantMessage string
	}{
		{
			name:        "validation",
			err:         domain.NewValidationError("text", "must not be empty"),
			wantStatus:  http.StatusBadRequest,
			wantCode:    ErrorCodeValidation,
			wantMessage: "text",
		},
		{
			name:        "empty result",
			err:         domain.NewEmptyResultError("Ghost"),
			wantStatus:  http.StatusNotFound,
			wantCode:    ErrorCodeEmptyResult,
			wantMessage: "Ghost",
		},
		{
			name:        "not found",
			err:         domain.NewNotFoundError("lastViewed", "abc"),
			wantStatus:  http.StatusNotFound,
			wantCode:    ErrorCodeNotFound,
			wantMessage: "lastViewed",
		},
		{
			name:        "conflict",
			err:         domain.NewConflictError("sync", "sync in progress"),
			wantStatus:  http.StatusConflict,
			wantCode:    ErrorCodeConflict,
			wantMessage: "sync in progress",
		},
		{
			name:        "transport",
			err:         domain.NewTransportError("quote-remote", "fetch quotes", "dial tcp 10.0.0.1:443"),
			wantStatus:  http.StatusServiceUnavailable,
			wantCode:    ErrorCodeUnavailable,
			wantMessage: "temporarily unavailable",
		},
		{
			name:        "deadline",
			err:         fmt.Errorf("reading quotes: %w", context.DeadlineExceeded),
			wantStatus:  http.StatusGatewayTimeout,
			wantCode:    ErrorCodeTimeout,
			wantMessage: "timed out",
		},
		{
			name:        "persistence",
			err:         domain.NewPersistenceError("write", "quotes", errors.New("disk I/O")),
			wantStatus:  http.StatusInternalServerError,
			wantCode:    ErrorCodeInternal,
			wantMessage: "internal error occurred",
		},
		{
			name:        "unknown",
			err:         errors.New("unexpected"),
			wantStatus:  http.StatusInternalServerError,
			wantCode:    ErrorCodeInternal,
			wantMessage: "internal error occurred",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, w := newTestContext(http.MethodGet, "/", "")
			c.Set("trace_id", "trace-"+tt.name)

			HandleError(c, tt.err)

			assert.Equal(t, tt.wantStatus, w.Code)

			var resp ErrorResponse
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
			assert.Equal(t, tt.wantCode, resp.Error.Code)
			assert.Contains(t, resp.Error.Message, tt.wantMessage)
			assert.Equal(t, "trace-"+tt.name, resp.TraceID)
			assert.NotContains(t, w.Body.String(), "10.0.0.1")
		})
	}
}

func TestHandleError_ValidationDetails(t *testing.T) {
	c, w := newTestContext(http.MethodGet, "/", "")

	HandleError(c, domain.NewValidationError("file", "invalid JSON structure"))

	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, map[string]string{"file": "invalid JSON structure"}, resp.Error.Details)
}

func TestMapDomainError_Nil(t *testing.T) {
	status, resp := MapDomainError(nil)
	assert.Equal(t, http.StatusOK, status)
	assert.Nil(t, resp)
}

func TestBindAndValidate_AddQuoteRequest(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		wantErr    error
		wantFields map[string]string
	}{
		{name: "valid", body: `{"text":"Stay hungry","category":"Motivation"}`},
		{
			name:       "blank fields",
			body:       `{"text":"  ","category":""}`,
			wantErr:    ErrValidation,
			wantFields: map[string]string{"text": "must not be empty", "category": "must not be empty"},
		},
		{name: "multi-line category", body: `{"text":"Stay hungry","category":"Life\nand more"}`},
		{name: "long category", body: `{"text":"Stay hungry","category":"` + strings.Repeat("c", 500) + `"}`},
		{name: "malformed", body: `{"text":`, wantErr: ErrBinding},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, _ := newTestContext(http.MethodPost, "/api/v1/quotes", tt.body)

			var req AddQuoteRequest
			err := BindAndValidate(c, &req)

			if tt.wantErr == nil {
				require.NoError(t, err)
				assert.Equal(t, "Stay hungry", req.Text)
				return
			}

			require.ErrorIs(t, err, tt.wantErr)
			if tt.wantFields != nil {
				assert.True(t, IsValidationError(err))
				assert.Equal(t, tt.wantFields, ValidationErrors(err))
			}
		})
	}
}

func TestBindQueryAndValidate_ListQuotesRequest(t *testing.T) {
	c, _ := newTestContext(http.MethodGet, "/api/v1/quotes?limit=5&category=Life&cursor=abc", "")

	var req ListQuotesRequest
	require.NoError(t, BindQueryAndValidate(c, &req))
	assert.Equal(t, 5, req.Limit)
	assert.Equal(t, "Life", req.Category)
	assert.Equal(t, "abc", req.Cursor)

	c, _ = newTestContext(http.MethodGet, "/api/v1/quotes?limit=500", "")
	err := BindQueryAndValidate(c, &ListQuotesRequest{})
	require.ErrorIs(t, err, ErrValidation)
	assert.Equal(t, map[string]string{"limit": "must be less than or equal to 100"}, ValidationErrors(err))
}

func TestRespondWithBindingError(t *testing.T) {
	c, w := newTestContext(http.MethodPost, "/", `{}`)
	RespondWithBindingError(c, BindAndValidate(c, &AddQuoteRequest{}))

	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, ErrorCodeValidation, resp.Error.Code)
	assert.Contains(t, resp.Error.Details, "text")

	c, w = newTestContext(http.MethodPost, "/", `[`)
	RespondWithBindingError(c, BindAndValidate(c, &AddQuoteRequest{}))

	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, ErrorCodeBadRequest, resp.Error.Code)
}

func TestWireName(t *testing.T) {
	type probe struct {
		JSON   string `json:"text,omitempty"`
		Form   string `form:"cursor"`
		Hidden string `json:"-"`
		Bare   string
	}

	typ := reflect.TypeFor[probe]()
	want := []string{"text", "cursor", "", "Bare"}
	for i, name := range want {
		assert.Equal(t, name, wireName(typ.Field(i)))
	}
}

func TestValidationMessage_UnknownTag(t *testing.T) {
	type odd struct {
		V string `json:"v" validate:"alpha"`
	}

	err := Validate(odd{V: "123"})
	require.Error(t, err)
	assert.Equal(t, map[string]string{"v": "failed validation: alpha"}, ValidationErrors(err))
}

func TestGetLimit(t *testing.T) {
	for limit, want := range map[int]int{0: DefaultLimit, -1: DefaultLimit, 7: 7, 100: 100, 150: MaxLimit} {
		p := PaginationRequest{Limit: limit}
		assert.Equal(t, want, p.GetLimit(), "limit %d", limit)
	}
}

func TestPaginate_WalksAllPages(t *testing.T) {
	items := []int{1, 2, 3, 4, 5}

	var (
		seen   []int
		cursor string
	)
	for pages := 0; ; pages++ {
		require.Less(t, pages, 5)

		page, err := Paginate(items, PaginationRequest{Limit: 2, Cursor: cursor}, "Life")
		require.NoError(t, err)
		assert.Equal(t, 5, page.Total)
		seen = append(seen, page.Items...)

		if !page.HasMore {
			assert.Empty(t, page.NextCursor)
			break
		}
		cursor = page.NextCursor
	}

	assert.Equal(t, items, seen)
}

func TestPaginate_Empty(t *testing.T) {
	page, err := Paginate([]int(nil), PaginationRequest{}, "")
	require.NoError(t, err)
	assert.NotNil(t, page.Items)
	assert.Empty(t, page.Items)
	assert.False(t, page.HasMore)
}

func TestPaginate_RejectsForeignCursor(t *testing.T) {
	cursor := EncodeCursor(CursorData{Offset: 2, Scope: "Life"})

	_, err := Paginate([]int{1, 2, 3}, PaginationRequest{Cursor: cursor}, "Motivation")
	assert.ErrorIs(t, err, ErrInvalidCursor)

	for _, bad := range []string{"!!!", EncodeCursor(CursorData{Offset: -1}), "bm90IGpzb24"} {
		_, err = Paginate([]int{1}, PaginationRequest{Cursor: bad}, "")
		assert.ErrorIs(t, err, ErrInvalidCursor, bad)
	}
}

func TestPaginate_CursorPastEnd(t *testing.T) {
	page, err := Paginate([]int{1, 2}, PaginationRequest{Cursor: EncodeCursor(CursorData{Offset: 9})}, "")
	require.NoError(t, err)
	assert.Empty(t, page.Items)
	assert.False(t, page.HasMore)
}
