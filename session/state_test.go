package session_test

import (
	"testing"

	"github.com/jrsteele09/go-internship-session/session"
	"github.com/stretchr/testify/require"
)

func TestState_CanTransition(t *testing.T) {
	tests := []struct {
		from, to session.State
		want     bool
	}{
		{session.StateUninitialized, session.StateAnonymous, true},
		{session.StateUninitialized, session.StateAuthenticating, true},
		{session.StateUninitialized, session.StateAuthenticated, false},
		{session.StateAuthenticating, session.StateAuthenticated, true},
		{session.StateAuthenticating, session.StateAnonymous, true},
		{session.StateAuthenticated, session.StateAnonymous, true},
		{session.StateAuthenticated, session.StateAuthenticated, true},
		{session.StateAnonymous, session.StateAuthenticating, true},
		{session.StateAnonymous, session.StateAuthenticated, false},
		{session.StateAnonymous, session.StateAnonymous, true},
	}

	for _, tt := range tests {
		t.Run(tt.from.String()+"->"+tt.to.String(), func(t *testing.T) {
			require.Equal(t, tt.want, tt.from.CanTransition(tt.to))
		})
	}
}

func TestState_NothingReturnsToUninitialized(t *testing.T) {
	for _, from := range []session.State{
		session.StateUninitialized, session.StateAuthenticating, session.StateAuthenticated, session.StateAnonymous,
	} {
		require.False(t, from.CanTransition(session.StateUninitialized), from.String())
	}
}

func TestState_String(t *testing.T) {
	require.Equal(t, "authenticated", session.StateAuthenticated.String())
	require.Equal(t, "State(42)", session.State(42).String())
}

func TestSnapshot_ZeroValue(t *testing.T) {
	var snapshot session.Snapshot
	require.Equal(t, session.StateUninitialized, snapshot.State())
	require.True(t, snapshot.Loading())
	require.False(t, snapshot.Authenticated())
	_, ok := snapshot.User()
	require.False(t, ok)
}
