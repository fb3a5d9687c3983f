// Package nav models which screen the app is on and how it got there.
package nav

// View is one screen of the app. The set of views is closed.
type View interface {
	view()
	// Title is shown in the header
	Title() string
}

type FriendList struct{}

type AddFriend struct{}

type EditFriend struct{ ID string }

type RecordHang struct{}

type EditHang struct{ ID string }

type FriendDetail struct{ ID string }

func (FriendList) view()   {}
func (AddFriend) view()    {}
func (EditFriend) view()   {}
func (RecordHang) view()   {}
func (EditHang) view()     {}
func (FriendDetail) view() {}

func (FriendList) Title() string   { return "Friends" }
func (AddFriend) Title() string    { return "Add friend" }
func (EditFriend) Title() string   { return "Edit friend" }
func (RecordHang) Title() string   { return "Record hang" }
func (EditHang) Title() string     { return "Edit hang" }
func (FriendDetail) Title() string { return "Friend" }

// Home is the view the app starts on and falls back to
var Home View = FriendList{}

// History is the stack of views visited before the current one, oldest
// first. Operations return a new History and never modify their argument.
type History []View

// Navigate moves from cur to next, remembering cur
func Navigate(cur, next View, hist History) (View, History) {
	out := make(History, len(hist), len(hist)+1)
	copy(out, hist)
	return next, append(out, cur)
}

// GoBack returns to the most recent view, or Home when there is none
func GoBack(hist History) (View, History) {
	if len(hist) == 0 {
		return Home, nil
	}
	prev := hist[len(hist)-1]
	out := make(History, len(hist)-1)
	copy(out, hist[:len(hist)-1])
	return prev, out
}

// GoHome jumps to Home and forgets the history
func GoHome() (View, History) {
	return Home, nil
}

// ShowHome reports whether a home shortcut is worth offering, i.e. going
// back once would not already land on the first screen.
func ShowHome(hist History) bool {
	return len(hist) > 1
}

// CanGoBack reports whether there is anywhere to go back to
func CanGoBack(hist History) bool {
	return len(hist) > 0
}
