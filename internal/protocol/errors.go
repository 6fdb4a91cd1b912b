package protocol

import (
	"errors"
	"fmt"

	"github.com/danmuck/pomoctl/internal/protocol/frame"
	"github.com/danmuck/pomoctl/internal/protocol/schema"
	"github.com/danmuck/pomoctl/internal/protocol/tlv"
)

var (
	ErrMalformedMessage = errors.New("protocol: malformed message")
	ErrUnknownAction    = errors.New("protocol: unknown action")
)

// decodeFaults are the lower-level errors that mean the peer sent bad bytes,
// as opposed to the transport failing underneath us.
var decodeFaults = []error{
	frame.ErrShortHeader,
	frame.ErrInvalidMagic,
	frame.ErrUnsupportedVersion,
	frame.ErrHeaderLenMismatch,
	frame.ErrPayloadTooLarge,
	frame.ErrShortPayload,
	tlv.ErrShortFieldHeader,
	tlv.ErrShortFieldValue,
	tlv.ErrTypeMismatch,
	tlv.ErrInvalidLength,
	tlv.ErrInvalidValue,
	ErrUnknownAction,
}

func malformed(err error) error {
	if err == nil || errors.Is(err, ErrMalformedMessage) {
		return err
	}
	var ve schema.ValidationError
	if errors.As(err, &ve) {
		return fmt.Errorf("%w: %w", ErrMalformedMessage, err)
	}
	for _, fault := range decodeFaults {
		if errors.Is(err, fault) {
			return fmt.Errorf("%w: %w", ErrMalformedMessage, err)
		}
	}
	return err
}

// IsMalformed reports whether err came from undecodable peer bytes.
func IsMalformed(err error) bool {
	return errors.Is(err, ErrMalformedMessage)
}
