package session

import "time"

// Phase names which variant a State holds.
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseWorking
	PhaseDone
)

func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseWorking:
		return "working"
	case PhaseDone:
		return "done"
	default:
		return "unknown"
	}
}

// Alert is the live audio playback owned by a Done state.
type Alert interface {
	Stop() error
}

// State is the single authoritative session state.
//
// Exactly one of Idle, Working(deadline) or Done(alert) holds. The session
// counter survives every transition so each work interval gets a fresh number.
type State struct {
	phase    Phase
	deadline time.Time
	session  uint64
	alert    Alert
	issued   uint64
}

func Idle() State {
	return State{phase: PhaseIdle}
}

func (s State) Phase() Phase { return s.phase }

// Deadline is set only while Working.
func (s State) Deadline() time.Time { return s.deadline }

// Session is the number of the current work interval, zero when Idle.
func (s State) Session() uint64 { return s.session }

// Alert is the playback handle owned while Done, nil otherwise.
func (s State) Alert() Alert { return s.alert }

// WithAlert attaches the playback handle started for a Done state.
func (s State) WithAlert(a Alert) State {
	if s.phase != PhaseDone {
		return s
	}
	s.alert = a
	return s
}

func (s State) idle() State {
	return State{phase: PhaseIdle, issued: s.issued}
}

func (s State) working(deadline time.Time) State {
	n := s.issued + 1
	return State{phase: PhaseWorking, deadline: deadline, session: n, issued: n}
}

func (s State) done() State {
	return State{phase: PhaseDone, session: s.session, issued: s.issued}
}
