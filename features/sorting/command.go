package sorting

import "sozblock/features/entries"

// Command applies one sort to a page and can put the exact previous order
// back. The pre-sort order is captured immediately before reordering, so
// undo replays the same index mapping regardless of how the sort permuted
// the entries.
type Command struct {
	engine    *Engine
	page      *entries.Page
	records   []*Record
	strategy  *Strategy
	direction Direction

	prev    entries.Snapshot
	applied bool
}

func NewCommand(engine *Engine, page *entries.Page, records []*Record, strategy *Strategy, direction Direction) *Command {
	return &Command{
		engine:    engine,
		page:      page,
		records:   records,
		strategy:  strategy,
		direction: direction,
	}
}

func (c *Command) Execute() error {
	sorted, err := c.engine.Sort(c.records, c.strategy, c.direction)
	if err != nil {
		return err
	}

	c.prev = c.page.Snapshot()

	order := make([]string, 0, len(sorted))
	for _, record := range sorted {
		if record.Entry != nil {
			order = append(order, record.Entry.ID)
		}
	}
	c.page.Apply(order)
	c.applied = true

	return nil
}

// Undo restores the captured order. It reports false when there is nothing
// to undo; undoing twice is a no-op.
func (c *Command) Undo() bool {
	if !c.applied {
		return false
	}

	c.page.Restore(c.prev)
	c.applied = false
	return true
}
