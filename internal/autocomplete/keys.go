package autocomplete

// Key is one of the special keys the input intercepts
type Key int

const (
	KeyEnter Key = iota
	KeyBackspace
	KeyUp
	KeyDown
	KeyEscape
)

// KeyResult tells the host what happened to a key
type KeyResult int

const (
	// KeyIgnored means the host should apply the key as ordinary text editing.
	KeyIgnored KeyResult = iota
	// KeyHandled means the input consumed the key.
	KeyHandled
	// KeyCreate means the user asked to create a new option from the query.
	// The host runs CreateAndSelect, or CreateFunc then CompleteCreate.
	KeyCreate
)

// HandleKey applies a special key
func (in *Input[T]) HandleKey(k Key) KeyResult {
	switch k {
	case KeyEnter:
		return in.handleEnter()
	case KeyBackspace:
		return in.handleBackspace()
	case KeyDown:
		in.scroll(1)
		return KeyHandled
	case KeyUp:
		in.scroll(-1)
		return KeyHandled
	case KeyEscape:
		in.handleEscape()
		return KeyHandled
	}
	return KeyIgnored
}

func (in *Input[T]) handleEnter() KeyResult {
	if !in.ShowOptions() {
		return KeyHandled
	}
	matches := in.Matches()
	if len(matches) > 0 {
		i := in.suggestionIndex
		if i >= len(matches) {
			i = 0
		}
		in.Select(matches[i])
		return KeyHandled
	}
	if in.OfferCreate() {
		return KeyCreate
	}
	return KeyHandled
}

// handleBackspace removes the last chip when the field is empty
func (in *Input[T]) handleBackspace() KeyResult {
	selected := in.selection.Selected()
	if in.Value() != "" || len(selected) == 0 {
		return KeyIgnored
	}
	in.selection.SetSelected(append([]T(nil), selected[:len(selected)-1]...))
	return KeyHandled
}

func (in *Input[T]) scroll(delta int) {
	n := len(in.Matches())
	if n == 0 {
		return
	}
	in.suggestionIndex = ((in.suggestionIndex+delta)%n + n) % n
}

func (in *Input[T]) handleEscape() {
	if !in.cfg.DisableEscapeReset {
		in.Reset()
	}
	in.focus.Blur()
}
