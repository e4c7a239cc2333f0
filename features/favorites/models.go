package favorites

// Favoriters is the ordered list of nicks that favorited an entry, exactly
// as the favoriters fragment renders them. Order matters downstream: the
// blocking engine processes and checkpoints in this order.
type Favoriters []string

// Contains reports whether nick is in the list.
func (f Favoriters) Contains(nick string) bool {
	for _, existing := range f {
		if existing == nick {
			return true
		}
	}
	return false
}

// EntryMeta carries the bits of an entry used when rendering author notes.
type EntryMeta struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	Permalink string `json:"permalink"`
}
