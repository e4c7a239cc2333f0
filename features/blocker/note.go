package blocker

import (
	"strings"
	"time"

	"sozblock/features/favorites"
)

// noteDateFormat renders dates the way the forum displays them.
const noteDateFormat = "02.01.2006"

// NoteTemplate renders the author note attached to every processed user.
// Recognized tokens: {postTitle}, {actionType}, {date}, {entryLink}.
// Unknown tokens pass through untouched.
type NoteTemplate struct {
	template string
}

func NewNoteTemplate(template string) *NoteTemplate {
	return &NoteTemplate{template: template}
}

func (n *NoteTemplate) Render(meta *favorites.EntryMeta, action Action, now time.Time) string {
	title, link := "", ""
	if meta != nil {
		title = meta.Title
		link = meta.Permalink
	}

	replacer := strings.NewReplacer(
		"{postTitle}", title,
		"{actionType}", action.Label(),
		"{date}", now.Format(noteDateFormat),
		"{entryLink}", link,
	)

	return replacer.Replace(n.template)
}
