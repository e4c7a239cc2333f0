package favorites

import (
	"context"
	"errors"
	"io"
	"regexp"
	"strings"

	"sozblock/features/site"

	"github.com/PuerkitoBio/goquery"
	"github.com/rs/zerolog/log"
)

var (
	ErrParsingFavoriters = errors.New("error parsing favoriters page")
	ErrParsingEntry      = errors.New("error parsing entry page")
)

// Resolver reads the favoriters fragment of an entry. Fetching is a single
// attempt: the caller decides what a transport failure means for the run.
type Resolver struct {
	fetcher   *site.PageFetcher
	endpoints *site.Endpoints
	hrefRe    *regexp.Regexp
}

func NewResolver(fetcher *site.PageFetcher, endpoints *site.Endpoints) *Resolver {
	prefix := regexp.QuoteMeta(endpoints.ProfilePrefix())
	return &Resolver{
		fetcher:   fetcher,
		endpoints: endpoints,
		hrefRe:    regexp.MustCompile(`href="(` + prefix + `[^"?#]+)"`),
	}
}

// FetchFavoriters returns the nicks that favorited the entry, in page order.
// An empty list is a valid answer; only transport and parse failures error.
func (r *Resolver) FetchFavoriters(ctx context.Context, entryID string) (Favoriters, error) {
	body, err := r.fetcher.FetchHTML(ctx, r.endpoints.Favoriters(entryID))
	if err != nil {
		return nil, err
	}

	raw, err := io.ReadAll(body)
	if err != nil {
		return nil, errors.Join(ErrParsingFavoriters, err)
	}

	favoriters, err := r.parseAnchors(raw)
	if err != nil {
		return nil, err
	}

	if len(favoriters) == 0 {
		// Some fragment variants render links outside anchor markup the
		// document parser recognizes. Fall back to scanning raw hrefs.
		favoriters = r.scanHrefs(raw)
	}

	log.Debug().
		Str("entry_id", entryID).
		Int("favoriters", len(favoriters)).
		Msg("Resolved favoriters")

	return favoriters, nil
}

func (r *Resolver) parseAnchors(raw []byte) (Favoriters, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(string(raw)))
	if err != nil {
		return nil, errors.Join(ErrParsingFavoriters, err)
	}

	prefix := r.endpoints.ProfilePrefix()
	seen := make(map[string]struct{})
	favoriters := make(Favoriters, 0)

	doc.Find(`a[href^="` + prefix + `"]`).Each(func(_ int, s *goquery.Selection) {
		href, _ := s.Attr("href")
		nick, ok := r.endpoints.Username(href)
		if !ok {
			return
		}
		if _, dup := seen[nick]; dup {
			return
		}
		seen[nick] = struct{}{}
		favoriters = append(favoriters, nick)
	})

	return favoriters, nil
}

func (r *Resolver) scanHrefs(raw []byte) Favoriters {
	seen := make(map[string]struct{})
	favoriters := make(Favoriters, 0)

	for _, match := range r.hrefRe.FindAllSubmatch(raw, -1) {
		nick, ok := r.endpoints.Username(string(match[1]))
		if !ok {
			continue
		}
		if _, dup := seen[nick]; dup {
			continue
		}
		seen[nick] = struct{}{}
		favoriters = append(favoriters, nick)
	}

	return favoriters
}

// FetchEntryMeta resolves the entry title and permalink used in author
// notes. The returned meta is always usable: when the page cannot be read
// the title degrades to the entry id and the error reports why.
func (r *Resolver) FetchEntryMeta(ctx context.Context, entryID string) (*EntryMeta, error) {
	meta := &EntryMeta{
		ID:        entryID,
		Title:     "#" + entryID,
		Permalink: r.endpoints.Entry(entryID),
	}

	body, err := r.fetcher.FetchHTML(ctx, meta.Permalink)
	if err != nil {
		return meta, err
	}

	doc, err := goquery.NewDocumentFromReader(body)
	if err != nil {
		return meta, errors.Join(ErrParsingEntry, err)
	}

	title := strings.TrimSpace(doc.Find("h1#title").AttrOr("data-title", ""))
	if title == "" {
		title = strings.TrimSpace(doc.Find("h1#title a").First().Text())
	}
	if title != "" {
		meta.Title = title
	}

	return meta, nil
}
