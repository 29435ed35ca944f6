package diary

import "github.com/fdg312/calorie-diary/internal/datekey"

// Navigator holds the day being viewed. It starts on today and can never
// move past it.
type Navigator struct {
	view  string
	today func() string
}

func NewNavigator(today func() string) *Navigator {
	return &Navigator{view: today(), today: today}
}

// NavigatorAt starts a navigator on view, falling back to today for
// invalid or future keys.
func NavigatorAt(view string, today func() string) *Navigator {
	n := NewNavigator(today)
	n.Select(view)
	return n
}

func (n *Navigator) View() string {
	return n.view
}

func (n *Navigator) Prev() string {
	if prev, err := datekey.Shift(n.view, -1); err == nil {
		n.view = prev
	}
	return n.view
}

// Next moves one day forward. It is rejected when the view is already today.
func (n *Navigator) Next() (string, bool) {
	if n.view >= n.today() {
		return n.view, false
	}
	next, err := datekey.Shift(n.view, 1)
	if err != nil {
		return n.view, false
	}
	n.view = next
	return n.view, true
}

// Select jumps to key. Future and malformed keys are rejected.
func (n *Navigator) Select(key string) bool {
	if !datekey.Valid(key) || key > n.today() {
		return false
	}
	n.view = key
	return true
}

func (n *Navigator) GoToday() string {
	n.view = n.today()
	return n.view
}

func (n *Navigator) IsToday() bool {
	return n.view == n.today()
}
