package protocol

import (
	"fmt"
	"io"

	"github.com/danmuck/pomoctl/internal/protocol/frame"
	"github.com/danmuck/pomoctl/internal/protocol/schema"
	"github.com/danmuck/pomoctl/internal/protocol/tlv"
)

// WriteCommand encodes cmd as one command frame.
func WriteCommand(w io.Writer, messageID uint64, cmd Command) error {
	if !cmd.Action.Valid() {
		return fmt.Errorf("%w: %d", ErrUnknownAction, uint8(cmd.Action))
	}
	fields := []tlv.Field{tlv.NewU8(schema.FieldAction, uint8(cmd.Action))}
	if cmd.Session != 0 {
		fields = append(fields, tlv.NewU64(schema.FieldSession, cmd.Session))
	}
	return frame.WriteFrame(w, frame.Frame{
		Header: frame.Header{
			MessageID:   messageID,
			MessageType: schema.MsgCommand,
		},
		Payload: tlv.EncodeFields(fields),
	}, frame.DefaultLimits())
}

// ReadCommand reads one command frame. Bad peer bytes yield ErrMalformedMessage;
// transport errors are returned unwrapped.
func ReadCommand(r io.Reader) (Command, uint64, error) {
	f, err := frame.ReadFrame(r, frame.DefaultLimits())
	if err != nil {
		return Command{}, 0, malformed(err)
	}
	cmd, err := DecodeCommandFrame(f)
	if err != nil {
		return Command{}, f.Header.MessageID, err
	}
	return cmd, f.Header.MessageID, nil
}

func DecodeCommandFrame(f frame.Frame) (Command, error) {
	if f.Header.MessageType != schema.MsgCommand || f.Header.Flags&frame.FlagIsResponse != 0 {
		return Command{}, fmt.Errorf("%w: expected command frame, got message_type=%d flags=%#x",
			ErrMalformedMessage, f.Header.MessageType, f.Header.Flags)
	}
	fields, err := tlv.DecodeFields(f.Payload)
	if err != nil {
		return Command{}, malformed(err)
	}
	if err := schema.Validate(schema.MsgCommand, fields); err != nil {
		return Command{}, malformed(err)
	}

	actionField, _ := tlv.GetField(fields, schema.FieldAction)
	raw, err := actionField.U8()
	if err != nil {
		return Command{}, malformed(err)
	}
	cmd := Command{Action: Action(raw)}
	if !cmd.Action.Valid() {
		return Command{}, malformed(fmt.Errorf("%w: %d", ErrUnknownAction, raw))
	}
	if sessionField, ok := tlv.GetField(fields, schema.FieldSession); ok {
		cmd.Session, err = sessionField.U64()
		if err != nil {
			return Command{}, malformed(err)
		}
	}
	return cmd, nil
}

// WriteResponse encodes resp as one response frame answering messageID.
func WriteResponse(w io.Writer, messageID uint64, resp Response) error {
	flags := frame.FlagIsResponse
	if !resp.OK {
		flags |= frame.FlagIsRejection
	}
	fields := []tlv.Field{
		tlv.NewBool(schema.FieldOK, resp.OK),
		tlv.NewString(schema.FieldText, resp.Text),
	}
	return frame.WriteFrame(w, frame.Frame{
		Header: frame.Header{
			MessageID:   messageID,
			MessageType: schema.MsgResponse,
			Flags:       flags,
		},
		Payload: tlv.EncodeFields(fields),
	}, frame.DefaultLimits())
}

func ReadResponse(r io.Reader) (Response, uint64, error) {
	f, err := frame.ReadFrame(r, frame.DefaultLimits())
	if err != nil {
		return Response{}, 0, malformed(err)
	}
	resp, err := DecodeResponseFrame(f)
	if err != nil {
		return Response{}, f.Header.MessageID, err
	}
	return resp, f.Header.MessageID, nil
}

func DecodeResponseFrame(f frame.Frame) (Response, error) {
	if f.Header.MessageType != schema.MsgResponse || f.Header.Flags&frame.FlagIsResponse == 0 {
		return Response{}, fmt.Errorf("%w: expected response frame, got message_type=%d flags=%#x",
			ErrMalformedMessage, f.Header.MessageType, f.Header.Flags)
	}
	fields, err := tlv.DecodeFields(f.Payload)
	if err != nil {
		return Response{}, malformed(err)
	}
	if err := schema.Validate(schema.MsgResponse, fields); err != nil {
		return Response{}, malformed(err)
	}
	okField, _ := tlv.GetField(fields, schema.FieldOK)
	textField, _ := tlv.GetField(fields, schema.FieldText)
	ok, err := okField.Bool()
	if err != nil {
		return Response{}, malformed(err)
	}
	text, err := textField.Text()
	if err != nil {
		return Response{}, malformed(err)
	}
	return Response{OK: ok, Text: text}, nil
}
