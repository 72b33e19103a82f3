package model

// OpenRouterRateLimit describes the request allowance attached to a key.
type OpenRouterRateLimit struct {
	Requests float64 `json:"requests"`
	Interval string  `json:"interval"`
}

// OpenRouterKeyInfo is the validated payload of GET /key.
type OpenRouterKeyInfo struct {
	Label             *string             `json:"label"`
	Usage             float64             `json:"usage"`
	IsFreeTier        bool                `json:"is_free_tier"`
	IsProvisioningKey bool                `json:"is_provisioning_key"`
	RateLimit         OpenRouterRateLimit `json:"rate_limit"`
	Limit             *float64            `json:"limit"`
}

// Remaining returns the unspent credit when the key has a limit.
func (k *OpenRouterKeyInfo) Remaining() (float64, bool) {
	if k == nil || k.Limit == nil {
		return 0, false
	}
	return *k.Limit - k.Usage, true
}

// KeyInfoStatus reports how a key-info lookup ended. Only KeyInfoStatusOK
// comes with data.
type KeyInfoStatus string

const (
	KeyInfoStatusOK             KeyInfoStatus = "ok"
	KeyInfoStatusDisabled       KeyInfoStatus = "disabled"
	KeyInfoStatusNoCredential   KeyInfoStatus = "no_credential"
	KeyInfoStatusInvalidSchema  KeyInfoStatus = "invalid_schema"
	KeyInfoStatusUnauthorized   KeyInfoStatus = "unauthorized"
	KeyInfoStatusHTTPError      KeyInfoStatus = "http_error"
	KeyInfoStatusTransportError KeyInfoStatus = "transport_error"
)
