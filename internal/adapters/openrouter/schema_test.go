package openrouter

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeKeyInfo_NullablesAndExtras(t *testing.T) {
	t.Parallel()

	body := []byte(`{
		"data": {
			"label": null,
			"usage": 0,
			"is_free_tier": true,
			"is_provisioning_key": true,
			"rate_limit": {"requests": -1, "interval": "1m", "burst": 5},
			"limit": null,
			"limit_remaining": null
		},
		"meta": {}
	}`)

	info, err := DecodeKeyInfo(body)
	require.NoError(t, err)
	assert.Nil(t, info.Label)
	assert.Nil(t, info.Limit)
	assert.True(t, info.IsFreeTier)
	assert.True(t, info.IsProvisioningKey)
	assert.InDelta(t, -1, info.RateLimit.Requests, 1e-9)
	assert.Equal(t, "1m", info.RateLimit.Interval)

	_, ok := info.Remaining()
	assert.False(t, ok)
}

func TestDecodeKeyInfo_CollectsIssues(t *testing.T) {
	t.Parallel()

	body := []byte(`{
		"data": {
			"label": 7,
			"usage": "lots",
			"is_free_tier": "no",
			"rate_limit": {"requests": "many"},
			"limit": false
		}
	}`)

	_, err := DecodeKeyInfo(body)
	require.Error(t, err)

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, []string{
		"data.label: expected string or null, got number",
		"data.usage: expected number, got string",
		"data.is_free_tier: expected boolean, got string",
		"data.is_provisioning_key: required boolean",
		"data.limit: expected number or null, got boolean",
		"data.rate_limit.requests: expected number, got string",
		"data.rate_limit.interval: required string",
	}, verr.Issues)
}

func TestDecodeKeyInfo_TopLevel(t *testing.T) {
	t.Parallel()

	tests := map[string]string{
		"":                "body: invalid JSON",
		`[]`:              "data: required object",
		`{"data":null}`:   "data: expected object, got null",
		`{"data":[1,2]}`:  "data: expected object, got array",
		`{"data":"text"}`: "data: expected object, got string",
	}
	for body, want := range tests {
		_, err := DecodeKeyInfo([]byte(body))
		var verr *ValidationError
		require.ErrorAs(t, err, &verr, "body %q", body)
		assert.Equal(t, []string{want}, verr.Issues, "body %q", body)
	}
}
