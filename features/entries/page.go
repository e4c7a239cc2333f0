package entries

// Snapshot is the order of a page at a point in time, as entry ids.
type Snapshot []string

// Page is a parsed listing page. The slice order is the display order;
// reordering goes through Apply so the page can always report and restore
// an exact order.
type Page struct {
	URL     string   `json:"url"`
	Title   string   `json:"title,omitempty"`
	Entries []*Entry `json:"entries"`
}

// Snapshot captures the current display order.
func (p *Page) Snapshot() Snapshot {
	ids := make(Snapshot, 0, len(p.Entries))
	for _, entry := range p.Entries {
		ids = append(ids, entry.ID)
	}
	return ids
}

// Apply reorders the page to match order. Ids the page does not contain are
// skipped; entries the order does not name keep their relative order at the
// end. Applying an order produced from the same page is always exact.
func (p *Page) Apply(order []string) {
	byID := make(map[string]*Entry, len(p.Entries))
	for _, entry := range p.Entries {
		byID[entry.ID] = entry
	}

	reordered := make([]*Entry, 0, len(p.Entries))
	taken := make(map[string]struct{}, len(order))
	for _, id := range order {
		entry, ok := byID[id]
		if !ok {
			continue
		}
		if _, dup := taken[id]; dup {
			continue
		}
		taken[id] = struct{}{}
		reordered = append(reordered, entry)
	}
	for _, entry := range p.Entries {
		if _, done := taken[entry.ID]; !done {
			reordered = append(reordered, entry)
		}
	}

	p.Entries = reordered
}

// Restore puts a previously captured order back.
func (p *Page) Restore(s Snapshot) {
	p.Apply(s)
}

// Authors returns every distinct author on the page, in display order.
func (p *Page) Authors() []string {
	seen := make(map[string]struct{}, len(p.Entries))
	authors := make([]string, 0, len(p.Entries))
	for _, entry := range p.Entries {
		if entry.Author == "" {
			continue
		}
		if _, dup := seen[entry.Author]; dup {
			continue
		}
		seen[entry.Author] = struct{}{}
		authors = append(authors, entry.Author)
	}
	return authors
}
