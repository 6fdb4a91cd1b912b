package schema

import (
	"fmt"

	"github.com/danmuck/pomoctl/internal/protocol/tlv"
	"github.com/rs/zerolog/log"
)

// Message type IDs from tlv contract.
const (
	MsgCommand  uint32 = 1
	MsgResponse uint32 = 2
)

// Field IDs from tlv contract.
const (
	FieldAction  uint16 = 1
	FieldSession uint16 = 2

	FieldOK   uint16 = 100
	FieldText uint16 = 101
)

type Requirement struct {
	ID       uint16
	Type     uint8
	Optional bool
}

type ValidationError struct {
	MessageType uint32
	FieldID     uint16
	Reason      string
}

func (e ValidationError) Error() string {
	if e.FieldID == 0 {
		return fmt.Sprintf("schema: message_type=%d: %s", e.MessageType, e.Reason)
	}
	return fmt.Sprintf("schema: message_type=%d field=%d: %s", e.MessageType, e.FieldID, e.Reason)
}

var requirements = map[uint32][]Requirement{
	MsgCommand: {
		{ID: FieldAction, Type: tlv.TypeU8},
		{ID: FieldSession, Type: tlv.TypeU64, Optional: true},
	},
	MsgResponse: {
		{ID: FieldOK, Type: tlv.TypeBool},
		{ID: FieldText, Type: tlv.TypeString},
	},
}

// Validate enforces required fields and field types for a message type.
// Optional fields are type-checked only when present; unknown fields are ignored.
func Validate(messageType uint32, fields []tlv.Field) error {
	reqs, ok := requirements[messageType]
	if !ok {
		log.Debug().Uint32("message_type", messageType).Msg("schema.Validate unknown message_type")
		return ValidationError{MessageType: messageType, Reason: "unknown message_type"}
	}
	for _, req := range reqs {
		f, found := tlv.GetField(fields, req.ID)
		if !found {
			if req.Optional {
				continue
			}
			log.Debug().
				Uint32("message_type", messageType).
				Uint16("field_id", req.ID).
				Msg("schema.Validate missing field")
			return ValidationError{MessageType: messageType, FieldID: req.ID, Reason: "missing required field"}
		}
		if f.Type != req.Type {
			log.Debug().
				Uint32("message_type", messageType).
				Uint16("field_id", req.ID).
				Uint8("got", f.Type).
				Uint8("want", req.Type).
				Msg("schema.Validate type mismatch")
			return ValidationError{MessageType: messageType, FieldID: req.ID, Reason: "type mismatch"}
		}
	}
	return nil
}
