package httpx

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arafatkatze/cline/internal/testutil"
)

func TestRequestID_GeneratesWhenMissing(t *testing.T) {
	var seen string
	h := RequestID()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = RequestIDFromContext(r.Context())
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	_, err := uuid.Parse(seen)
	require.NoError(t, err)
	assert.Equal(t, seen, rec.Header().Get(RequestIDHeader))
}

func TestRequestID_PropagatesInbound(t *testing.T) {
	tests := []struct {
		name    string
		inbound string
		keep    bool
	}{
		{"simple", "req-123", true},
		{"uuid", "3f0b5f0e-8a2c-4d8e-9f6a-0e1c2b3d4e5f", true},
		{"with spaces", "req 123", false},
		{"newline", "req\n123", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var seen string
			h := RequestID()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				seen = RequestIDFromContext(r.Context())
			}))

			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.Header[RequestIDHeader] = []string{tt.inbound}
			h.ServeHTTP(httptest.NewRecorder(), req)

			if tt.keep {
				assert.Equal(t, tt.inbound, seen)
			} else {
				assert.NotEqual(t, tt.inbound, seen)
				assert.NotEmpty(t, seen)
			}
		})
	}
}

func TestRequestIDFromContext_Empty(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	assert.Empty(t, RequestIDFromContext(req.Context()))
}

func TestLogging_RecordsRequest(t *testing.T) {
	logger, logs := testutil.NewLogCapture()
	h := RequestID()(Logging(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
		_, _ = w.Write([]byte("short and stout"))
	})))

	req := httptest.NewRequest(http.MethodPost, "/api/browser-sessions/pages", nil)
	req.Header.Set(RequestIDHeader, "req-1")
	h.ServeHTTP(httptest.NewRecorder(), req)

	rec, ok := logs.Find("http")
	require.True(t, ok)

	attr := func(key string) any {
		v, found := testutil.Attr(rec, key)
		require.True(t, found, "missing attr %s", key)
		return v.Any()
	}
	assert.Equal(t, "POST", attr("method"))
	assert.Equal(t, "/api/browser-sessions/pages", attr("path"))
	assert.EqualValues(t, http.StatusTeapot, attr("status"))
	assert.EqualValues(t, len("short and stout"), attr("bytes"))
	assert.Equal(t, "req-1", attr("request_id"))
}

func TestLogging_DefaultStatus(t *testing.T) {
	logger, logs := testutil.NewLogCapture()
	h := Logging(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("ok"))
	}))

	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/healthz", nil))

	rec, ok := logs.Find("http")
	require.True(t, ok)
	status, _ := testutil.Attr(rec, "status")
	assert.EqualValues(t, http.StatusOK, status.Any())
}

func TestRecover_WritesInternalError(t *testing.T) {
	logger, logs := testutil.NewLogCapture()
	h := Recover(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	require.Equal(t, http.StatusInternalServerError, rec.Code)
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "internal", body["error"])
	assert.Equal(t, "internal server error", body["message"])

	entry, ok := logs.Find("panic")
	require.True(t, ok)
	v, _ := testutil.Attr(entry, "error")
	assert.Equal(t, "boom", v.Any())
}

func TestRecover_RepanicsAbortHandler(t *testing.T) {
	logger, _ := testutil.NewLogCapture()
	h := Recover(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic(http.ErrAbortHandler)
	}))

	assert.PanicsWithValue(t, http.ErrAbortHandler, func() {
		h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	})
}
