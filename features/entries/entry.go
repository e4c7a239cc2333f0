package entries

// Entry is one row of a forum listing page. Fields mirror the data
// attributes the site renders on each item; counts default to zero when an
// attribute is missing.
type Entry struct {
	ID            string `json:"id"`
	Author        string `json:"author"`
	AuthorID      string `json:"author_id"`
	FavoriteCount int    `json:"favorite_count"`
	CommentCount  int    `json:"comment_count"`
	Content       string `json:"content"`
	Permalink     string `json:"permalink"`
}
