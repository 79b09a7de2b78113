package views

import "github.com/tgienger/taskboard/internal/store"

// StateChanged carries a new store snapshot to the views
type StateChanged struct {
	State store.State
}

// ShowTasks switches to the task list
type ShowTasks struct{}

// ShowTemplates switches to the template list
type ShowTemplates struct{}

// ShowLabels switches to category, tag and unit management
type ShowLabels struct{}

// ShowSignIn switches to the sign-in form
type ShowSignIn struct{}

// SignedIn is sent once the sign-in view stored a session
type SignedIn struct {
	User string
}

// SignedOut is sent after the session was cleared
type SignedOut struct{}

// newer reports whether next should replace cur. Snapshots from the store
// subscription can arrive after one the view already took from Dispatch.
func newer(cur, next store.State) bool {
	return next.Revision() >= cur.Revision()
}
