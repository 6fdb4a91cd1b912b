package protocol

import "fmt"

// Action is the command tag carried on the wire.
type Action uint8

const (
	ActionWork Action = iota + 1
	ActionWorkDone
	ActionBreak
	ActionStop
	ActionGetState
)

var actionNames = map[Action]string{
	ActionWork:     "work",
	ActionWorkDone: "work_done",
	ActionBreak:    "break",
	ActionStop:     "stop",
	ActionGetState: "get_state",
}

func (a Action) String() string {
	if name, ok := actionNames[a]; ok {
		return name
	}
	return fmt.Sprintf("action(%d)", uint8(a))
}

func (a Action) Valid() bool {
	_, ok := actionNames[a]
	return ok
}

// Command is one request to the daemon.
//
// Session is only meaningful on WorkDone: it names the work interval whose
// timer sent the signal. Zero means unspecified.
type Command struct {
	Action  Action
	Session uint64
}

func Work() Command     { return Command{Action: ActionWork} }
func Break() Command    { return Command{Action: ActionBreak} }
func Stop() Command     { return Command{Action: ActionStop} }
func GetState() Command { return Command{Action: ActionGetState} }

func WorkDone(session uint64) Command {
	return Command{Action: ActionWorkDone, Session: session}
}

// Response is the daemon's answer. OK=false is a policy rejection, not an error.
type Response struct {
	OK   bool
	Text string
}

func Accept(text string) Response { return Response{OK: true, Text: text} }
func Reject(text string) Response { return Response{OK: false, Text: text} }
