package httpx

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/arafatkatze/cline/internal/core"
	"github.com/arafatkatze/cline/internal/domain/model"
	"github.com/arafatkatze/cline/internal/service/browsersession"
	"github.com/arafatkatze/cline/internal/testutil"
)

func TestNewRouter_Routes(t *testing.T) {
	logger, _ := testutil.NewLogCapture()
	router := NewRouter(RouterServices{
		KeyInfo: &fakeKeyInfoService{result: core.KeyInfoResult{Status: model.KeyInfoStatusNoCredential}},
		BrowserSessions: browsersession.NewService(browsersession.ServiceOptions{
			DefaultSettings: model.DefaultBrowserSettings(),
			Logger:          logger,
		}),
		Cache:        stubHealth{},
		MaxBodyBytes: 1 << 20,
		Logger:       logger,
	})

	tests := []struct {
		method string
		path   string
		body   string
		status int
	}{
		{http.MethodGet, "/healthz", "", http.StatusOK},
		{http.MethodHead, "/healthz", "", http.StatusOK},
		{http.MethodGet, "/readyz", "", http.StatusOK},
		{http.MethodGet, "/api/openrouter/key-info", "", http.StatusOK},
		{http.MethodPost, "/api/browser-sessions/pages", `{"messages":[]}`, http.StatusOK},
		{http.MethodGet, "/api/browser-sessions/pages", "", http.StatusMethodNotAllowed},
		{http.MethodPost, "/api/openrouter/key-info", "", http.StatusMethodNotAllowed},
		{http.MethodGet, "/nope", "", http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			rec := httptest.NewRecorder()
			req := httptest.NewRequest(tt.method, tt.path, bytes.NewBufferString(tt.body))
			router.ServeHTTP(rec, req)
			assert.Equal(t, tt.status, rec.Code, rec.Body.String())
		})
	}
}

func TestNewRouter_OptionalServices(t *testing.T) {
	router := NewRouter(RouterServices{})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/openrouter/key-info", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}
