package sorting

import (
	"errors"
	"fmt"
)

var (
	// ErrNoComparator means a strategy reached the engine without a
	// comparison function. That is a wiring defect, never swallowed.
	ErrNoComparator    = errors.New("sort strategy has no comparator")
	ErrUnknownStrategy = errors.New("unknown sort strategy")
)

// Direction selects how a strategy's descending-first comparison is used.
type Direction string

const (
	Descending Direction = "desc"
	Ascending  Direction = "asc"
)

// ParseDirection accepts the two wire values; empty defers to the
// strategy's default.
func ParseDirection(s string) (Direction, error) {
	switch Direction(s) {
	case Descending, Ascending, "":
		return Direction(s), nil
	}
	return "", fmt.Errorf("unknown sort direction %q", s)
}

// CompareFunc orders two records descending-first: negative when a ranks
// above b, zero for a tie the stable sort resolves by original order.
type CompareFunc func(a, b *Record) int

// Strategy is one entry of the sort catalogue. Strategies are stateless;
// everything they need is on the Record.
type Strategy struct {
	Name             string      `json:"name"`
	Icon             string      `json:"icon"`
	Tooltip          string      `json:"tooltip"`
	DefaultDirection Direction   `json:"default_direction"`
	Compare          CompareFunc `json:"-"`
}

// Registry is the strategy catalogue. Registration order only affects
// listing, never comparison semantics.
type Registry struct {
	order      []string
	strategies map[string]*Strategy
}

func NewRegistry() *Registry {
	return &Registry{strategies: make(map[string]*Strategy)}
}

// Register validates the strategy once, at registration. A strategy
// without a comparator never enters the catalogue.
func (r *Registry) Register(s *Strategy) error {
	if s == nil || s.Compare == nil {
		return ErrNoComparator
	}
	if s.Name == "" {
		return errors.New("sort strategy needs a name")
	}
	if _, dup := r.strategies[s.Name]; dup {
		return fmt.Errorf("sort strategy %q registered twice", s.Name)
	}

	r.strategies[s.Name] = s
	r.order = append(r.order, s.Name)
	return nil
}

func (r *Registry) Get(name string) (*Strategy, error) {
	s, ok := r.strategies[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownStrategy, name)
	}
	return s, nil
}

// List returns the catalogue in registration order.
func (r *Registry) List() []*Strategy {
	out := make([]*Strategy, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, r.strategies[name])
	}
	return out
}
