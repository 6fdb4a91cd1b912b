package protocol

import (
	"bytes"
	"errors"
	"io"
	"testing"

	"github.com/danmuck/pomoctl/internal/protocol/frame"
	"github.com/danmuck/pomoctl/internal/protocol/schema"
	"github.com/danmuck/pomoctl/internal/protocol/tlv"
	"github.com/danmuck/pomoctl/internal/testutil/testlog"
)

func TestCommandRoundTrip(t *testing.T) {
	testlog.Start(t)
	cmds := []Command{Work(), WorkDone(0), WorkDone(17), Break(), Stop(), GetState()}
	for i, in := range cmds {
		var buf bytes.Buffer
		if err := WriteCommand(&buf, uint64(i+1), in); err != nil {
			t.Fatalf("write %s: %v", in.Action, err)
		}
		out, id, err := ReadCommand(&buf)
		if err != nil {
			t.Fatalf("read %s: %v", in.Action, err)
		}
		if out != in || id != uint64(i+1) {
			t.Fatalf("round-trip mismatch got=%+v id=%d want=%+v id=%d", out, id, in, i+1)
		}
	}
}

func TestResponseRoundTrip(t *testing.T) {
	testlog.Start(t)
	for _, in := range []Response{Accept("Starting a 25-minute session!"), Reject("Already working"), Accept("")} {
		var buf bytes.Buffer
		if err := WriteResponse(&buf, 9, in); err != nil {
			t.Fatalf("write response: %v", err)
		}
		raw := buf.Bytes()
		head, err := frame.DecodeHeader(raw[:frame.FixedHeaderLen])
		if err != nil {
			t.Fatalf("decode header: %v", err)
		}
		if (head.Flags&frame.FlagIsRejection != 0) == in.OK {
			t.Fatalf("rejection flag mismatch flags=%#x ok=%v", head.Flags, in.OK)
		}
		out, id, err := ReadResponse(bytes.NewReader(raw))
		if err != nil {
			t.Fatalf("read response: %v", err)
		}
		if out != in || id != 9 {
			t.Fatalf("round-trip mismatch got=%+v want=%+v", out, in)
		}
	}
}

func TestWriteCommandRejectsUnknownAction(t *testing.T) {
	testlog.Start(t)
	var buf bytes.Buffer
	if err := WriteCommand(&buf, 1, Command{Action: 42}); !errors.Is(err, ErrUnknownAction) {
		t.Fatalf("expected ErrUnknownAction, got %v", err)
	}
}

func TestReadCommandUnknownActionIsMalformed(t *testing.T) {
	testlog.Start(t)
	buf := commandFrame(t, []tlv.Field{tlv.NewU8(schema.FieldAction, 99)})
	_, _, err := ReadCommand(bytes.NewReader(buf))
	if !IsMalformed(err) || !errors.Is(err, ErrUnknownAction) {
		t.Fatalf("expected malformed unknown action, got %v", err)
	}
}

func TestReadCommandMissingActionIsMalformed(t *testing.T) {
	testlog.Start(t)
	buf := commandFrame(t, []tlv.Field{tlv.NewU64(schema.FieldSession, 3)})
	_, _, err := ReadCommand(bytes.NewReader(buf))
	var ve schema.ValidationError
	if !IsMalformed(err) || !errors.As(err, &ve) {
		t.Fatalf("expected malformed validation error, got %v", err)
	}
}

func TestReadCommandTruncatedIsMalformed(t *testing.T) {
	testlog.Start(t)
	var buf bytes.Buffer
	if err := WriteCommand(&buf, 1, Work()); err != nil {
		t.Fatalf("write: %v", err)
	}
	raw := buf.Bytes()
	for _, cut := range []int{5, int(frame.FixedHeaderLen), len(raw) - 1} {
		_, _, err := ReadCommand(bytes.NewReader(raw[:cut]))
		if !IsMalformed(err) {
			t.Fatalf("cut=%d expected malformed, got %v", cut, err)
		}
	}
}

func TestReadCommandGarbageIsMalformed(t *testing.T) {
	testlog.Start(t)
	garbage := bytes.Repeat([]byte("not a frame "), 4)
	_, _, err := ReadCommand(bytes.NewReader(garbage))
	if !errors.Is(err, ErrMalformedMessage) || !errors.Is(err, frame.ErrInvalidMagic) {
		t.Fatalf("expected malformed invalid magic, got %v", err)
	}
}

func TestReadCommandRejectsResponseFrame(t *testing.T) {
	testlog.Start(t)
	var buf bytes.Buffer
	if err := WriteResponse(&buf, 1, Accept("Stopped")); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, _, err := ReadCommand(&buf); !IsMalformed(err) {
		t.Fatalf("expected malformed, got %v", err)
	}
}

func TestReadResponseRejectsCommandFrame(t *testing.T) {
	testlog.Start(t)
	var buf bytes.Buffer
	if err := WriteCommand(&buf, 1, Stop()); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, _, err := ReadResponse(&buf); !IsMalformed(err) {
		t.Fatalf("expected malformed, got %v", err)
	}
}

func TestTransportErrorsAreNotMalformed(t *testing.T) {
	testlog.Start(t)
	boom := errors.New("connection reset")
	_, _, err := ReadCommand(failingReader{err: boom})
	if IsMalformed(err) || !errors.Is(err, boom) {
		t.Fatalf("expected raw transport error, got %v", err)
	}
}

func TestClosedStreamIsNotMalformed(t *testing.T) {
	testlog.Start(t)
	if _, _, err := ReadCommand(bytes.NewReader(nil)); IsMalformed(err) || !errors.Is(err, io.EOF) {
		t.Fatalf("command: expected io.EOF, got %v", err)
	}
	if _, _, err := ReadResponse(bytes.NewReader(nil)); IsMalformed(err) || !errors.Is(err, io.EOF) {
		t.Fatalf("response: expected io.EOF, got %v", err)
	}
}

func TestActionString(t *testing.T) {
	if ActionWorkDone.String() != "work_done" {
		t.Fatalf("unexpected name: %s", ActionWorkDone)
	}
	if Action(0).Valid() || Action(0).String() != "action(0)" {
		t.Fatalf("zero action should be invalid")
	}
}

type failingReader struct{ err error }

func (r failingReader) Read([]byte) (int, error) { return 0, r.err }

var _ io.Reader = failingReader{}

func commandFrame(t *testing.T, fields []tlv.Field) []byte {
	t.Helper()
	var buf bytes.Buffer
	err := frame.WriteFrame(&buf, frame.Frame{
		Header:  frame.Header{MessageID: 1, MessageType: schema.MsgCommand},
		Payload: tlv.EncodeFields(fields),
	}, frame.DefaultLimits())
	if err != nil {
		t.Fatalf("write frame: %v", err)
	}
	return buf.Bytes()
}
