// File: protocol/frame.go
// Package protocol implements WebSocket framing over non-socket transports.
// License: Apache-2.0
//
// Frame is the unit of exchange between the engine and its peer. A frame is
// constructed either by DecodeFrame from wire bytes or by application code
// for outgoing control and data frames, and is never mutated afterwards.

package protocol

import "encoding/binary"

// Frame represents a single WebSocket frame.
type Frame struct {
	Fin     bool   // FIN bit; no continuation reassembly is implemented
	Opcode  Opcode // frame type tag
	Payload []byte // raw payload, already unmasked on the decode path
}

// TextFrame builds a final TEXT data frame.
func TextFrame(payload []byte) *Frame {
	return &Frame{Fin: true, Opcode: OpcodeText, Payload: payload}
}

// BinaryFrame builds a final BINARY data frame.
func BinaryFrame(payload []byte) *Frame {
	return &Frame{Fin: true, Opcode: OpcodeBinary, Payload: payload}
}

// PingFrame builds a PING control frame carrying the given tag.
func PingFrame(payload []byte) *Frame {
	return &Frame{Fin: true, Opcode: OpcodePing, Payload: payload}
}

// PongFrame builds a PONG control frame echoing the given payload.
func PongFrame(payload []byte) *Frame {
	return &Frame{Fin: true, Opcode: OpcodePong, Payload: payload}
}

// CloseFrame builds a CLOSE control frame carrying a status code.
func CloseFrame(code uint16) *Frame {
	return &Frame{Fin: true, Opcode: OpcodeClose, Payload: ClosePayload(code)}
}

// ClosePayload encodes a close status code as the 2-byte big-endian
// payload of a CLOSE frame.
func ClosePayload(code uint16) []byte {
	p := make([]byte, 2)
	binary.BigEndian.PutUint16(p, code)
	return p
}

// CloseCode extracts the status code from a CLOSE frame payload.
// Returns CloseAbnormalClosure when no code is present.
func CloseCode(payload []byte) uint16 {
	if len(payload) < 2 {
		return CloseAbnormalClosure
	}
	return binary.BigEndian.Uint16(payload)
}
