// Package session owns the pomodoro state machine.
//
// Ownership boundary:
// - the Idle / Working / Done state value
// - the pure (state, command) -> (state, response, effect) transition
//
// Performing effects (timers, audio) belongs to the daemon.
package session
