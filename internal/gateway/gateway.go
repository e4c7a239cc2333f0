package gateway

import (
	"context"
	"net/http"

	"sozblock/internal/config"

	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog/log"
)

// Gateway wraps the HTTP client used for the forum's mutating endpoints.
// Read paths (favoriters, profiles, entry pages) go through the colly
// client; the POSTs that change account state all go through here.
type Gateway struct {
	client *resty.Client
}

func NewGateway(cfg *config.Config) *Gateway {
	userAgent := cfg.Gateway.UserAgent
	if userAgent == "" {
		userAgent = cfg.Colly.UserAgent
	}

	client := resty.New().
		SetBaseURL(cfg.Site.BaseURL).
		SetTimeout(cfg.Gateway.Timeout).
		SetHeader("User-Agent", userAgent).
		SetHeader("X-Requested-With", "XMLHttpRequest")

	if cfg.Site.SessionCookie != "" {
		client.SetCookie(&http.Cookie{
			Name:  cfg.Site.CookieName,
			Value: cfg.Site.SessionCookie,
		})
	}

	client.OnBeforeRequest(func(c *resty.Client, req *resty.Request) error {
		log.Debug().Str("method", req.Method).Str("url", req.URL).Msg("forum request")
		return nil
	})

	client.OnAfterResponse(func(c *resty.Client, resp *resty.Response) error {
		log.Debug().Int("status", resp.StatusCode()).Str("url", resp.Request.URL).Msg("forum response")
		return nil
	})

	// resty's own retry stays off: retry policy lives with the callers,
	// which know which failures are permanent.

	return &Gateway{client: client}
}

// PostForm issues a form POST against a path relative to the configured base
// URL. A non-2xx response comes back as a *StatusError.
func (g *Gateway) PostForm(ctx context.Context, path string, form map[string]string) error {
	req := g.client.R().SetContext(ctx)
	if len(form) > 0 {
		req.SetFormData(form)
	}

	resp, err := req.Post(path)
	if err != nil {
		return err
	}

	return CheckResponse(resp)
}

// CheckResponse maps a non-success response to a *StatusError.
func CheckResponse(resp *resty.Response) error {
	if resp.IsSuccess() {
		return nil
	}

	body := resp.Body()
	if len(body) > 256 {
		body = body[:256]
	}

	return &StatusError{
		StatusCode: resp.StatusCode(),
		Status:     resp.Status(),
		URL:        resp.Request.URL,
		Body:       string(body),
	}
}
