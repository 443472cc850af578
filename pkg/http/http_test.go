package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	applogger "Astrolabe/pkg/logger"
)

type pingRequest struct {
	Name  string  `json:"name" validate:"required"`
	Lat   float64 `json:"lat" validate:"latitude"`
	Limit int     `json:"limit" default:"10" validate:"gte=1,max=100"`
}

type routes struct{}

func (routes) RegisterRoutes(e *echo.Echo) {
	e.POST("/ping", func(c echo.Context) error {
		var req pingRequest
		if errs := ReadAndValidateRequest(c, &req); errs != nil {
			return BadRequestResponse(c, errs)
		}
		return SuccessResponse(c, req)
	})
	e.GET("/items/:id", func(c echo.Context) error {
		return AppErrorResponse(c, NotFoundErrorf("item %s not found", c.Param("id")))
	})
	e.GET("/boom", func(c echo.Context) error {
		panic("kaboom")
	})
	e.GET("/plain", func(c echo.Context) error {
		return AppErrorResponse(c, errors.New("opaque"))
	})
}

func newTestServer() (*Server, *prometheus.Registry) {
	reg := prometheus.NewRegistry()
	s := NewServer(applogger.Nop(), []Handler{routes{}}, WithMetrics("/metrics", reg, reg))
	return s, reg
}

func do(s *Server, method, target, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	s.Echo().ServeHTTP(rec, req)
	return rec
}

func TestReadAndValidateRequest(t *testing.T) {
	s, _ := newTestServer()

	rec := do(s, http.MethodPost, "/ping", `{"name":"a","lat":10}`)
	require.Equal(t, http.StatusOK, rec.Code)
	var ok struct {
		Status int         `json:"status"`
		Data   pingRequest `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &ok))
	assert.Equal(t, 200, ok.Status)
	assert.Equal(t, 10, ok.Data.Limit)

	rec = do(s, http.MethodPost, "/ping", `{"lat":95}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	var bad APIResponse400Err
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &bad))
	require.Len(t, bad.Data, 2)
	assert.Equal(t, "ERR_REQUIRED", bad.Data[0].Code)
	assert.Equal(t, "name", bad.Data[0].Field)
	assert.Equal(t, "ERR_LATITUDE", bad.Data[1].Code)

	rec = do(s, http.MethodPost, "/ping", `{"name":`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "ERR_MALFORMED_BODY")
}

func TestAppErrorResponse(t *testing.T) {
	s, _ := newTestServer()

	rec := do(s, http.MethodGet, "/items/42", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "item 42 not found")
	assert.Contains(t, rec.Body.String(), "ERR_NOT_FOUND")

	rec = do(s, http.MethodGet, "/plain", "")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotContains(t, rec.Body.String(), "opaque")
}

func TestRecoverMiddleware(t *testing.T) {
	s, _ := newTestServer()
	rec := do(s, http.MethodGet, "/boom", "")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestCORSPreflight(t *testing.T) {
	s, _ := newTestServer()
	req := httptest.NewRequest(http.MethodOptions, "/ping", nil)
	req.Header.Set(echo.HeaderOrigin, "https://example.org")
	rec := httptest.NewRecorder()
	s.Echo().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "*", rec.Header().Get(echo.HeaderAccessControlAllowOrigin))
	assert.Contains(t, rec.Header().Get(echo.HeaderAccessControlAllowMethods), http.MethodPost)
}

func TestMetricsUseRouteTemplate(t *testing.T) {
	s, reg := newTestServer()
	do(s, http.MethodGet, "/items/1", "")
	do(s, http.MethodGet, "/items/2", "")

	families, err := reg.Gather()
	require.NoError(t, err)
	var found bool
	for _, f := range families {
		if f.GetName() != "astrolabe_http_requests_total" {
			continue
		}
		for _, m := range f.GetMetric() {
			for _, l := range m.GetLabel() {
				if l.GetName() == "route" && l.GetValue() == "/items/:id" {
					found = true
					assert.Equal(t, 2.0, m.GetCounter().GetValue())
				}
			}
		}
	}
	assert.True(t, found)

	rec := do(s, http.MethodGet, "/metrics", "")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestClientSendAndParse(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/echo":
			assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
			var in map[string]string
			_ = json.NewDecoder(r.Body).Decode(&in)
			_ = json.NewEncoder(w).Encode(map[string]string{"got": in["x"], "q": r.URL.Query().Get("q")})
		default:
			http.Error(w, "nope", http.StatusServiceUnavailable)
		}
	}))
	defer ts.Close()

	c := NewClient(WithBaseURL(ts.URL))
	var out map[string]string
	err := c.SendAndParse(context.Background(), &RequestOptions{
		Method:      http.MethodPost,
		Path:        "/echo",
		QueryParams: map[string][]string{"q": {"1"}},
		Body:        map[string]string{"x": "y"},
	}, &out)
	require.NoError(t, err)
	assert.Equal(t, "y", out["got"])
	assert.Equal(t, "1", out["q"])

	err = c.SendAndParse(context.Background(), &RequestOptions{Method: http.MethodGet, Path: "missing"}, nil)
	var se *StatusError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, http.StatusServiceUnavailable, se.StatusCode)
	assert.True(t, se.Temporary())
}
