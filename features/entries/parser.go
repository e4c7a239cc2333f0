package entries

import (
	"errors"
	"io"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/rs/zerolog/log"
)

var ErrParsingPage = errors.New("error parsing listing page")

// Parser extracts listing rows from page HTML. Every li carrying a data-id
// attribute is an entry; the surrounding page chrome is ignored.
type Parser struct{}

func NewParser() *Parser {
	return &Parser{}
}

func (p *Parser) ParsePage(body io.Reader) (*Page, error) {
	doc, err := goquery.NewDocumentFromReader(body)
	if err != nil {
		return nil, errors.Join(ErrParsingPage, err)
	}

	page := &Page{
		Title:   strings.TrimSpace(doc.Find("h1#title").AttrOr("data-title", "")),
		Entries: make([]*Entry, 0),
	}

	doc.Find("li[data-id]").Each(func(_ int, s *goquery.Selection) {
		entry := &Entry{
			ID:            strings.TrimSpace(s.AttrOr("data-id", "")),
			Author:        strings.TrimSpace(s.AttrOr("data-author", "")),
			AuthorID:      strings.TrimSpace(s.AttrOr("data-author-id", "")),
			FavoriteCount: attrInt(s, "data-favorite-count"),
			CommentCount:  attrInt(s, "data-comment-count"),
			Content:       strings.TrimSpace(s.Find("div.content").First().Text()),
			Permalink:     strings.TrimSpace(s.Find("a.entry-date").First().AttrOr("href", "")),
		}
		if entry.ID == "" {
			return
		}
		page.Entries = append(page.Entries, entry)
	})

	log.Debug().
		Int("entries", len(page.Entries)).
		Str("title", page.Title).
		Msg("Parsed listing page")

	return page, nil
}

func attrInt(s *goquery.Selection, name string) int {
	raw := strings.TrimSpace(s.AttrOr(name, ""))
	if raw == "" {
		return 0
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0
	}
	return n
}
