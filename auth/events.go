package auth

import "github.com/jrsteele09/varix-web/sessions"

type EventKind int

const (
	SessionSet EventKind = iota + 1
	SessionCleared
	RecoveryDetected
)

func (k EventKind) String() string {
	switch k {
	case SessionSet:
		return "SessionSet"
	case SessionCleared:
		return "SessionCleared"
	case RecoveryDetected:
		return "RecoveryDetected"
	default:
		return "Unknown"
	}
}

type Event struct {
	Kind    EventKind
	Session *sessions.Session
}

// Classify maps a backend change notification onto an Event.
func Classify(c sessions.Change) Event {
	switch {
	case c.Event == sessions.EventPasswordRecovery:
		return Event{Kind: RecoveryDetected, Session: c.Session}
	case c.Event == sessions.EventSignedOut, c.Session == nil:
		return Event{Kind: SessionCleared}
	default:
		return Event{Kind: SessionSet, Session: c.Session}
	}
}

// Effect is work the reducer asks its caller to perform.
type Effect int

const (
	EffectNone Effect = iota
	EffectSignOut
)

// State is the application's view of authentication.
type State struct {
	Session *sessions.Session
	Loading bool
}

func (s State) User() *sessions.User {
	if s.Session == nil {
		return nil
	}
	return &s.Session.User
}

func (s State) Authenticated() bool {
	return s.Session != nil
}

// Reduce applies an event to the state. A recovery detected while the
// browser is on the recovery landing never becomes the current session;
// the caller is told to sign out instead. Every other event replaces the
// current session with the one it carries.
func Reduce(state State, ev Event, loc Location) (State, Effect) {
	switch ev.Kind {
	case RecoveryDetected:
		if loc.IsRecoveryLanding() {
			return state, EffectSignOut
		}
		state.Session = ev.Session
	case SessionSet:
		state.Session = ev.Session
	case SessionCleared:
		state.Session = nil
	}
	return state, EffectNone
}
