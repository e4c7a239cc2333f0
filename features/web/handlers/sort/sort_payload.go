package sort

import "sozblock/features/entries"

type SortPayload struct {
	URL     string           `json:"url,omitempty"`
	Title   string           `json:"title,omitempty"`
	Count   int              `json:"count"`
	Entries []*entries.Entry `json:"entries"`
}

func NewSortPayload(page *entries.Page) *SortPayload {
	return &SortPayload{
		URL:     page.URL,
		Title:   page.Title,
		Count:   len(page.Entries),
		Entries: page.Entries,
	}
}
