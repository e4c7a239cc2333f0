package site

import (
	"fmt"
	"net/url"
	"strings"

	"sozblock/internal/config"
)

// Endpoints builds the forum URLs the fetchers and the gateway use. Read
// URLs are absolute; gateway paths stay relative because the gateway already
// carries the base URL.
type Endpoints struct {
	base string
	cfg  config.SiteConfig
}

func NewEndpoints(cfg *config.Config) *Endpoints {
	return &Endpoints{
		base: strings.TrimRight(cfg.Site.BaseURL, "/"),
		cfg:  cfg.Site,
	}
}

// Favoriters returns the absolute URL of the favoriters fragment of an entry.
func (e *Endpoints) Favoriters(entryID string) string {
	return e.base + e.cfg.FavoritersPath + "?entryId=" + url.QueryEscape(entryID)
}

// Entry returns the absolute permalink of an entry.
func (e *Endpoints) Entry(entryID string) string {
	return e.base + fmt.Sprintf(e.cfg.EntryPath, url.PathEscape(entryID))
}

// Profile returns the absolute URL of a user's profile page.
func (e *Endpoints) Profile(username string) string {
	return e.base + fmt.Sprintf(e.cfg.ProfilePath, url.PathEscape(username))
}

// RelationPath returns the gateway path that adds a relation to a user.
// The user is identified by numeric id, not nick; code selects the relation
// kind the forum applies.
func (e *Endpoints) RelationPath(userID, code string) string {
	return fmt.Sprintf(e.cfg.RelationPath, url.PathEscape(userID)) + "?r=" + url.QueryEscape(code)
}

// NotePath returns the gateway path that saves a user's author note.
func (e *Endpoints) NotePath(username string) string {
	return fmt.Sprintf(e.cfg.NotePath, url.PathEscape(username))
}

// ProfilePrefix is the path prefix all profile links share.
func (e *Endpoints) ProfilePrefix() string {
	return strings.TrimSuffix(e.cfg.ProfilePath, "%s")
}

// Username extracts the nick from a profile link. It accepts absolute URLs
// and bare hrefs; ok is false for anything that is not a profile link.
func (e *Endpoints) Username(href string) (string, bool) {
	parsed, err := url.Parse(strings.TrimSpace(href))
	if err != nil {
		return "", false
	}

	path := parsed.EscapedPath()
	prefix := e.ProfilePrefix()
	if !strings.HasPrefix(path, prefix) {
		return "", false
	}

	rest := strings.TrimPrefix(path, prefix)
	if idx := strings.IndexByte(rest, '/'); idx >= 0 {
		rest = rest[:idx]
	}
	if rest == "" {
		return "", false
	}

	nick, err := url.PathUnescape(rest)
	if err != nil {
		return "", false
	}

	return nick, true
}
