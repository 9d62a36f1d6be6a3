// File: protocol/constants.go
// Package protocol
// License: Apache-2.0
//
// WebSocket wire protocol constants (RFC 6455).

package protocol

// Opcode is the 4-bit frame type tag carried in byte 0 of every frame.
type Opcode byte

const (
	OpcodeContinuation Opcode = 0x0
	OpcodeText         Opcode = 0x1
	OpcodeBinary       Opcode = 0x2
	OpcodeClose        Opcode = 0x8
	OpcodePing         Opcode = 0x9
	OpcodePong         Opcode = 0xA
)

// IsControl reports whether the opcode designates a control frame.
func (o Opcode) IsControl() bool {
	return o >= 0x8
}

func (o Opcode) String() string {
	switch o {
	case OpcodeContinuation:
		return "CONTINUATION"
	case OpcodeText:
		return "TEXT"
	case OpcodeBinary:
		return "BINARY"
	case OpcodeClose:
		return "CLOSE"
	case OpcodePing:
		return "PING"
	case OpcodePong:
		return "PONG"
	}
	return "UNKNOWN"
}

const (
	// Bit masks for byte 0 and byte 1 of the frame header.
	FinBit  = 0x80
	RsvBits = 0x70
	MaskBit = 0x80

	// Payload length markers in the 7-bit base length field.
	Len16Marker = 126
	Len64Marker = 127

	// Close codes
	CloseNormalClosure     = 1000
	CloseGoingAway         = 1001
	CloseProtocolError     = 1002
	CloseUnsupportedData   = 1003
	CloseAbnormalClosure   = 1006
	CloseInternalServerErr = 1011
)
