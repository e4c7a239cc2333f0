package colly

import (
	"fmt"
	"net/http"

	"sozblock/internal/config"

	"github.com/gocolly/colly/v2"
)

// NewCollector builds the shared scraping collector. Fetchers clone it per
// request, so every option set here applies to all read paths.
func NewCollector(cfg *config.Config) (*colly.Collector, error) {
	collyConfig := cfg.Colly
	client := colly.NewCollector(
		colly.MaxBodySize(collyConfig.MaxSize),
		colly.IgnoreRobotsTxt(),
		colly.AllowURLRevisit(),
		colly.Async(true),
		colly.UserAgent(collyConfig.UserAgent),
		colly.TraceHTTP(),
	)
	if client == nil {
		return nil, fmt.Errorf("failed to create colly collector")
	}

	client.SetRequestTimeout(collyConfig.TimeOut)
	client.SetRedirectHandler(func(req *http.Request, via []*http.Request) error {
		if len(via) >= collyConfig.MaxRedirects {
			return fmt.Errorf("too many redirects (%d) visiting %s", len(via), req.URL)
		}
		return nil
	})

	if cfg.Site.SessionCookie != "" {
		cookie := &http.Cookie{Name: cfg.Site.CookieName, Value: cfg.Site.SessionCookie}
		if err := client.SetCookies(cfg.Site.BaseURL, []*http.Cookie{cookie}); err != nil {
			return nil, fmt.Errorf("setting session cookie: %w", err)
		}
	}

	return client, nil
}
