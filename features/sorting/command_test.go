package sorting

import (
	"testing"

	"sozblock/features/entries"

	"github.com/stretchr/testify/assert"
)

func commandFixture() (*entries.Page, []*Record) {
	page := &entries.Page{
		Entries: []*entries.Entry{
			{ID: "1", FavoriteCount: 2},
			{ID: "2", FavoriteCount: 9},
			{ID: "3", FavoriteCount: 5},
			{ID: "4", FavoriteCount: 7},
		},
	}

	records := make([]*Record, 0, len(page.Entries))
	for _, entry := range page.Entries {
		records = append(records, &Record{Entry: entry, FavoriteCount: entry.FavoriteCount})
	}
	return page, records
}

func TestCommandExecuteAndUndo(t *testing.T) {
	page, records := commandFixture()
	favorites, err := DefaultRegistry().Get("favorites")
	assert.NoError(t, err)

	cmd := NewCommand(NewEngine(), page, records, favorites, Descending)

	assert.NoError(t, cmd.Execute())
	assert.Equal(t, entries.Snapshot{"2", "4", "3", "1"}, page.Snapshot())

	assert.True(t, cmd.Undo())
	assert.Equal(t, entries.Snapshot{"1", "2", "3", "4"}, page.Snapshot())

	assert.False(t, cmd.Undo(), "Second undo has nothing left to restore")
	assert.Equal(t, entries.Snapshot{"1", "2", "3", "4"}, page.Snapshot())
}

func TestCommandAscending(t *testing.T) {
	page, records := commandFixture()
	favorites, err := DefaultRegistry().Get("favorites")
	assert.NoError(t, err)

	cmd := NewCommand(NewEngine(), page, records, favorites, Ascending)

	assert.NoError(t, cmd.Execute())
	assert.Equal(t, entries.Snapshot{"1", "3", "4", "2"}, page.Snapshot())
}

func TestCommandExecuteAgainAfterUndo(t *testing.T) {
	page, records := commandFixture()
	favorites, err := DefaultRegistry().Get("favorites")
	assert.NoError(t, err)

	cmd := NewCommand(NewEngine(), page, records, favorites, Descending)

	assert.NoError(t, cmd.Execute())
	assert.True(t, cmd.Undo())
	assert.NoError(t, cmd.Execute())

	assert.Equal(t, entries.Snapshot{"2", "4", "3", "1"}, page.Snapshot())
	assert.True(t, cmd.Undo())
	assert.Equal(t, entries.Snapshot{"1", "2", "3", "4"}, page.Snapshot())
}

func TestCommandFailedExecuteTouchesNothing(t *testing.T) {
	page, records := commandFixture()

	cmd := NewCommand(NewEngine(), page, records, nil, Descending)

	assert.ErrorIs(t, cmd.Execute(), ErrNoComparator)
	assert.Equal(t, entries.Snapshot{"1", "2", "3", "4"}, page.Snapshot())
	assert.False(t, cmd.Undo())
}
