// Package session tracks whether a user is signed in. It only gates the
// sign-out affordance; task data is not scoped per user.
package session

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/tgienger/taskboard/internal/db"
)

// Key is the medium key name for the session, before prefixing
const Key = "session"

// Session describes the signed-in user
type Session struct {
	User       string    `json:"user"`
	SignedInAt time.Time `json:"signedInAt"`
}

// Manager reads and writes the session record
type Manager struct {
	medium db.Medium
	key    string
	now    func() time.Time
}

// NewManager stores the session under prefix+Key
func NewManager(medium db.Medium, prefix string, now func() time.Time) *Manager {
	if now == nil {
		now = time.Now
	}
	return &Manager{medium: medium, key: prefix + Key, now: now}
}

// Current returns the active session, if any
func (m *Manager) Current() (Session, bool, error) {
	raw, ok, err := m.medium.Get(m.key)
	if err != nil {
		return Session{}, false, fmt.Errorf("reading session: %w", err)
	}
	if !ok || raw == "" {
		return Session{}, false, nil
	}

	var s Session
	if err := json.Unmarshal([]byte(raw), &s); err != nil {
		return Session{}, false, fmt.Errorf("decoding session: %w", err)
	}
	return s, s.User != "", nil
}

// SignedIn reports presence of a session; read errors count as absent
func (m *Manager) SignedIn() bool {
	_, ok, err := m.Current()
	return err == nil && ok
}

// SignIn records user as signed in
func (m *Manager) SignIn(user string) (Session, error) {
	user = strings.TrimSpace(user)
	if user == "" {
		return Session{}, fmt.Errorf("signing in: user name is required")
	}

	s := Session{User: user, SignedInAt: m.now().UTC()}
	data, err := json.Marshal(s)
	if err != nil {
		return Session{}, fmt.Errorf("encoding session: %w", err)
	}
	if err := m.medium.Set(m.key, string(data)); err != nil {
		return Session{}, fmt.Errorf("signing in: %w", err)
	}
	return s, nil
}

// SignOut removes the session
func (m *Manager) SignOut() error {
	if err := m.medium.Delete(m.key); err != nil {
		return fmt.Errorf("signing out: %w", err)
	}
	return nil
}
