package schema

import (
	"errors"
	"testing"

	"github.com/danmuck/pomoctl/internal/protocol/tlv"
	"github.com/danmuck/pomoctl/internal/testutil/testlog"
)

func TestValidateCommandRequiredFields(t *testing.T) {
	testlog.Start(t)
	fields := []tlv.Field{tlv.NewU8(FieldAction, 1)}
	if err := Validate(MsgCommand, fields); err != nil {
		t.Fatalf("validate command: %v", err)
	}
}

func TestValidateUnknownFieldsIgnored(t *testing.T) {
	testlog.Start(t)
	fields := []tlv.Field{
		tlv.NewBool(FieldOK, true),
		tlv.NewString(FieldText, "Stopped"),
		tlv.NewString(9999, "future"),
	}
	if err := Validate(MsgResponse, fields); err != nil {
		t.Fatalf("validate with unknown field: %v", err)
	}
}

func TestValidateMissingRequiredDeterministic(t *testing.T) {
	testlog.Start(t)
	err := Validate(MsgResponse, []tlv.Field{tlv.NewBool(FieldOK, false)})
	var ve ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if ve.FieldID != FieldText || ve.Reason != "missing required field" {
		t.Fatalf("unexpected validation error: %+v", ve)
	}
}

func TestValidateOptionalFieldTypeChecked(t *testing.T) {
	testlog.Start(t)
	fields := []tlv.Field{
		tlv.NewU8(FieldAction, 2),
		tlv.NewString(FieldSession, "7"),
	}
	err := Validate(MsgCommand, fields)
	var ve ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if ve.FieldID != FieldSession || ve.Reason != "type mismatch" {
		t.Fatalf("unexpected validation error: %+v", ve)
	}
}

func TestValidateUnknownMessageType(t *testing.T) {
	testlog.Start(t)
	err := Validate(77, nil)
	var ve ValidationError
	if !errors.As(err, &ve) || ve.Reason != "unknown message_type" {
		t.Fatalf("unexpected error: %v", err)
	}
}
