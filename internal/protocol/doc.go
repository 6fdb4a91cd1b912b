// Package protocol owns the daemon wire contract.
//
// Ownership boundary:
// - command vocabulary and response envelope
// - command/response frame encode and decode
//
// Framing and payload primitives live in frame, tlv and schema.
package protocol
