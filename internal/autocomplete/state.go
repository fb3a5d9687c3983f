package autocomplete

// Selection holds the chosen options. The input never owns it; it only
// proposes replacements through SetSelected.
type Selection[T any] interface {
	Selected() []T
	SetSelected([]T)
}

// SliceSelection is a Selection backed by a plain slice
type SliceSelection[T any] struct {
	items []T
}

// NewSliceSelection creates a selection seeded with initial items
func NewSliceSelection[T any](initial ...T) *SliceSelection[T] {
	return &SliceSelection[T]{items: append([]T(nil), initial...)}
}

// Selected returns the current items
func (s *SliceSelection[T]) Selected() []T { return s.items }

// SetSelected replaces the items
func (s *SliceSelection[T]) SetSelected(items []T) { s.items = items }

// TextState holds the in-progress query and the free text outside the
// activation segment.
type TextState interface {
	Query() string
	SetQuery(string)
	Remainder() string
	SetRemainder(string)
}

// LocalText is the TextState an uncontrolled input keeps for itself
type LocalText struct {
	query     string
	remainder string
}

func (t *LocalText) Query() string         { return t.query }
func (t *LocalText) SetQuery(s string)     { t.query = s }
func (t *LocalText) Remainder() string     { return t.remainder }
func (t *LocalText) SetRemainder(s string) { t.remainder = s }

// Focuser receives focus changes. Hosts wire it to their text field.
type Focuser interface {
	Focus()
	Blur()
}

type noopFocuser struct{}

func (noopFocuser) Focus() {}
func (noopFocuser) Blur()  {}
