package session

import (
	"fmt"
	"time"

	"github.com/danmuck/pomoctl/internal/protocol"
)

const (
	DefaultDuration = 25 * time.Minute
	DeadlineLayout  = "15:04:05"
)

// Config holds the state machine's fixed parameters.
type Config struct {
	Duration time.Duration
}

func DefaultConfig() Config {
	return Config{Duration: DefaultDuration}
}

// EffectKind is the side effect a transition asks the server to perform.
type EffectKind int

const (
	EffectNone EffectKind = iota
	EffectStartTimer
	EffectStartAudio
	EffectStopAudio
)

func (k EffectKind) String() string {
	switch k {
	case EffectNone:
		return "none"
	case EffectStartTimer:
		return "start_timer"
	case EffectStartAudio:
		return "start_audio"
	case EffectStopAudio:
		return "stop_audio"
	default:
		return "unknown"
	}
}

// Effect carries the parameters of one side effect. Deadline and Session are
// set for EffectStartTimer; Alert is the handle to release for EffectStopAudio.
type Effect struct {
	Kind     EffectKind
	Deadline time.Time
	Session  uint64
	Alert    Alert
}

var noEffect = Effect{Kind: EffectNone}

// Apply computes the transition for cmd. It performs no I/O.
func Apply(state State, cmd protocol.Command, now time.Time, cfg Config) (State, protocol.Response, Effect) {
	switch cmd.Action {
	case protocol.ActionWork:
		return applyWork(state, now, cfg)
	case protocol.ActionWorkDone:
		return applyWorkDone(state, cmd)
	case protocol.ActionBreak:
		return applyBreak(state)
	case protocol.ActionStop:
		return applyStop(state)
	case protocol.ActionGetState:
		return state, describe(state), noEffect
	default:
		return state, protocol.Reject(fmt.Sprintf("Unknown action %s", cmd.Action)), noEffect
	}
}

func applyWork(state State, now time.Time, cfg Config) (State, protocol.Response, Effect) {
	switch state.phase {
	case PhaseWorking:
		return state, protocol.Reject("Already working"), noEffect
	case PhaseDone:
		return state, protocol.Reject("No way, you need a break"), noEffect
	}
	d := cfg.Duration
	if d <= 0 {
		d = DefaultDuration
	}
	next := state.working(now.Add(d))
	return next,
		protocol.Accept(fmt.Sprintf("Starting a %s session!", durationLabel(d))),
		Effect{Kind: EffectStartTimer, Deadline: next.deadline, Session: next.session}
}

func applyWorkDone(state State, cmd protocol.Command) (State, protocol.Response, Effect) {
	switch state.phase {
	case PhaseIdle:
		return state, protocol.Reject("Not working"), noEffect
	case PhaseDone:
		return state, protocol.Reject("Already doing that"), noEffect
	}
	if cmd.Session != 0 && cmd.Session != state.session {
		return state, protocol.Reject("Stale timer signal"), noEffect
	}
	return state.done(), protocol.Accept("Yayy"), Effect{Kind: EffectStartAudio}
}

func applyBreak(state State) (State, protocol.Response, Effect) {
	switch state.phase {
	case PhaseIdle:
		return state, protocol.Reject("Already on break"), noEffect
	case PhaseWorking:
		return state, protocol.Reject("You're working"), noEffect
	}
	return state.idle(), protocol.Accept("Starting break"), Effect{Kind: EffectStopAudio, Alert: state.alert}
}

func applyStop(state State) (State, protocol.Response, Effect) {
	effect := noEffect
	if state.phase == PhaseDone {
		effect = Effect{Kind: EffectStopAudio, Alert: state.alert}
	}
	return state.idle(), protocol.Accept("Stopped"), effect
}

func describe(state State) protocol.Response {
	switch state.phase {
	case PhaseWorking:
		return protocol.Accept("Working until " + state.deadline.Local().Format(DeadlineLayout))
	case PhaseDone:
		return protocol.Accept("Work session is done, take a break")
	default:
		return protocol.Accept("Not doing anything")
	}
}

func durationLabel(d time.Duration) string {
	if d%time.Minute == 0 {
		return fmt.Sprintf("%d-minute", int64(d/time.Minute))
	}
	return d.String()
}
