// Package daemon hosts the pomodoro session behind a unix socket.
//
// Server accepts one connection at a time, decodes a command, applies it to
// the session state and performs the resulting side effect before replying.
// Work timers run as separate goroutines and report back through the same
// socket as any other client; they never touch the state directly.
package daemon
