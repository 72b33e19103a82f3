package config

// BrowserConfig holds defaults for browser-session views.
type BrowserConfig struct {
	// ViewportWidth and ViewportHeight are used when a request carries no
	// browser settings.
	ViewportWidth  int `env:"BROWSER_VIEWPORT_WIDTH"  envDefault:"900"`
	ViewportHeight int `env:"BROWSER_VIEWPORT_HEIGHT" envDefault:"600"`

	// LenientResults turns malformed result payloads into unknown-state pages
	// instead of rejecting the whole log.
	LenientResults bool `env:"BROWSER_LENIENT_RESULTS" envDefault:"false"`
}

// Sanitize restores the default viewport when either side is not positive.
func (c *BrowserConfig) Sanitize() {
	if c.ViewportWidth <= 0 || c.ViewportHeight <= 0 {
		c.ViewportWidth = 900
		c.ViewportHeight = 600
	}
}
