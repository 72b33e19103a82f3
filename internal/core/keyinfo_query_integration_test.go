package core_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/arafatkatze/cline/internal/adapters/openrouter"
	"github.com/arafatkatze/cline/internal/core"
	"github.com/arafatkatze/cline/internal/data"
	"github.com/arafatkatze/cline/internal/domain/model"
	"github.com/arafatkatze/cline/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const slowKeyBody = `{"data":{"label":"team key","usage":1,"is_free_tier":false,` +
	`"is_provisioning_key":false,"rate_limit":{"requests":10,"interval":"10s"},"limit":null}}`

func TestKeyInfoQueryService_SlowUpstreamOutlivesCallerDeadline(t *testing.T) {
	t.Parallel()

	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		hits.Add(1)
		time.Sleep(200 * time.Millisecond)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(slowKeyBody))
	}))
	t.Cleanup(srv.Close)

	logger, _ := testutil.NewLogCapture()
	svc := core.NewKeyInfoQueryService(core.KeyInfoQueryServiceOptions{
		Fetcher: openrouter.NewClient(openrouter.Config{BaseURL: srv.URL, Timeout: 5 * time.Second, Logger: logger}),
		Cache:   data.NewMemoryCacheRepo(),
		Logger:  logger,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	_, err := svc.Get(ctx, "sk-test", srv.URL)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	res, err := svc.Get(context.Background(), "sk-test", srv.URL)
	require.NoError(t, err)
	assert.Equal(t, model.KeyInfoStatusOK, res.Status)
	require.NotNil(t, res.Info)
	assert.Equal(t, "team key", *res.Info.Label)

	res, err = svc.Get(context.Background(), "sk-test", srv.URL)
	require.NoError(t, err)
	assert.Equal(t, "hit", res.Cache)
	assert.Equal(t, model.KeyInfoStatusOK, res.Status)
	assert.Equal(t, int32(1), hits.Load())
}
