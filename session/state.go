package session

import (
	"fmt"

	"github.com/jrsteele09/go-internship-session/users"
)

// State is the coarse lifecycle state of a session.
type State int

const (
	// StateUninitialized is the state before the stored credential was checked.
	StateUninitialized State = iota
	// StateAuthenticating means a credential is held and the profile fetch is in flight.
	StateAuthenticating
	// StateAuthenticated means the profile is loaded.
	StateAuthenticated
	// StateAnonymous means there is no usable session.
	StateAnonymous
)

func (s State) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateAuthenticating:
		return "authenticating"
	case StateAuthenticated:
		return "authenticated"
	case StateAnonymous:
		return "anonymous"
	}
	return fmt.Sprintf("State(%d)", int(s))
}

// transitions lists, for every state, the states it may move to. Nothing
// moves back to StateUninitialized.
var transitions = map[State][]State{
	StateUninitialized:  {StateAuthenticating, StateAnonymous},
	StateAuthenticating: {StateAuthenticating, StateAuthenticated, StateAnonymous},
	StateAuthenticated:  {StateAuthenticating, StateAuthenticated, StateAnonymous},
	StateAnonymous:      {StateAuthenticating, StateAnonymous},
}

// CanTransition reports whether a session in s may move to next.
func (s State) CanTransition(next State) bool {
	for _, allowed := range transitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Snapshot is an immutable view of the session. The profile is only
// reachable while the session is authenticated.
type Snapshot struct {
	state State
	user  *users.User
}

func uninitialized() Snapshot {
	return Snapshot{state: StateUninitialized}
}

func authenticating() Snapshot {
	return Snapshot{state: StateAuthenticating}
}

func anonymous() Snapshot {
	return Snapshot{state: StateAnonymous}
}

func authenticated(user *users.User) Snapshot {
	return Snapshot{state: StateAuthenticated, user: copyUser(user)}
}

func (s Snapshot) State() State {
	return s.state
}

// User returns a copy of the loaded profile.
func (s Snapshot) User() (*users.User, bool) {
	if s.state != StateAuthenticated || s.user == nil {
		return nil, false
	}
	return copyUser(s.user), true
}

// Loading is true until the session settled into authenticated or anonymous.
func (s Snapshot) Loading() bool {
	return s.state == StateUninitialized || s.state == StateAuthenticating
}

func (s Snapshot) Authenticated() bool {
	return s.state == StateAuthenticated
}

func copyUser(user *users.User) *users.User {
	if user == nil {
		return nil
	}
	clone := *user
	clone.Permissions = append([]users.Permission(nil), user.Permissions...)
	return &clone
}
