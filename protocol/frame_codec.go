// File: protocol/frame_codec.go
// Package protocol implements the frame codec.
// License: Apache-2.0
//
// Encoding and decoding are split into direction-specific entry points:
// EncodeFrame never masks (engine acts in the server role of RFC 6455),
// EncodeMaskedFrame always masks (peer role), and DecodeFrame unmasks
// whenever the MASK bit is set. DecodeFrame consumes at most one frame per
// call and reports how many bytes it used, so callers can slice a growing
// receive buffer and re-invoke it until ErrIncompleteFrame.

package protocol

import (
	"encoding/binary"
	"errors"
)

var (
	// ErrIncompleteFrame reports that the buffer does not yet hold a full
	// frame. Recoverable: the caller retries once more bytes arrive.
	ErrIncompleteFrame = errors.New("incomplete frame")

	// ErrMalformedFrame reports a corrupt frame header (reserved bits set).
	// The remainder of the delivery buffer cannot be trusted.
	ErrMalformedFrame = errors.New("malformed frame header")
)

// EncodeFrame serializes f for the engine-to-peer direction. The MASK bit
// is left clear and the payload is copied unmodified. No upper bound is
// enforced beyond what the 64-bit length field can express.
func EncodeFrame(f *Frame) []byte {
	buf := make([]byte, 0, 10+len(f.Payload))
	buf = appendHeader(buf, f, 0)
	return append(buf, f.Payload...)
}

// EncodeMaskedFrame serializes f for the peer-to-engine direction, applying
// the 4-byte masking key to every payload byte.
func EncodeMaskedFrame(f *Frame, key [4]byte) []byte {
	buf := make([]byte, 0, 14+len(f.Payload))
	buf = appendHeader(buf, f, MaskBit)
	buf = append(buf, key[:]...)
	n := len(buf)
	buf = append(buf, f.Payload...)
	maskBytes(buf[n:], key)
	return buf
}

// appendHeader writes byte 0 and the three-tier length encoding. maskFlag
// is OR-ed into the length byte (0 or MaskBit).
func appendHeader(buf []byte, f *Frame, maskFlag byte) []byte {
	b0 := byte(f.Opcode) & 0x0F
	if f.Fin {
		b0 |= FinBit
	}
	buf = append(buf, b0)

	switch plen := len(f.Payload); {
	case plen <= 125:
		buf = append(buf, byte(plen)|maskFlag)
	case plen <= 0xFFFF:
		buf = append(buf, Len16Marker|maskFlag, 0, 0)
		binary.BigEndian.PutUint16(buf[len(buf)-2:], uint16(plen))
	default:
		buf = append(buf, Len64Marker|maskFlag, 0, 0, 0, 0, 0, 0, 0, 0)
		binary.BigEndian.PutUint64(buf[len(buf)-8:], uint64(plen))
	}
	return buf
}

// DecodeFrame parses a single frame from the head of buf.
//
// On success it returns the frame and the total number of bytes consumed
// (header plus payload). A buffer shorter than the frame requires yields
// ErrIncompleteFrame; a declared payload length exceeding the remaining
// buffer is also incomplete, never a speculative allocation. A header with
// reserved bits set yields ErrMalformedFrame.
func DecodeFrame(buf []byte) (*Frame, int, error) {
	if len(buf) < 2 {
		return nil, 0, ErrIncompleteFrame
	}
	if buf[0]&RsvBits != 0 {
		return nil, 0, ErrMalformedFrame
	}

	fin := buf[0]&FinBit != 0
	opcode := Opcode(buf[0] & 0x0F)
	masked := buf[1]&MaskBit != 0
	length := uint64(buf[1] & 0x7F)
	offset := 2

	switch length {
	case Len16Marker:
		if len(buf) < offset+2 {
			return nil, 0, ErrIncompleteFrame
		}
		length = uint64(binary.BigEndian.Uint16(buf[offset:]))
		offset += 2
	case Len64Marker:
		if len(buf) < offset+8 {
			return nil, 0, ErrIncompleteFrame
		}
		length = binary.BigEndian.Uint64(buf[offset:])
		offset += 8
	}

	var maskKey [4]byte
	if masked {
		if len(buf) < offset+4 {
			return nil, 0, ErrIncompleteFrame
		}
		copy(maskKey[:], buf[offset:offset+4])
		offset += 4
	}

	// Validate the declared length against the remaining buffer before
	// any payload allocation; hostile length fields wait for more data.
	if uint64(len(buf)-offset) < length {
		return nil, 0, ErrIncompleteFrame
	}

	payload := make([]byte, length)
	copy(payload, buf[offset:offset+int(length)])
	if masked {
		maskBytes(payload, maskKey)
	}
	offset += int(length)

	return &Frame{Fin: fin, Opcode: opcode, Payload: payload}, offset, nil
}

// maskBytes XORs buf in place with the cycled 4-byte key. Masking and
// unmasking are the same operation.
func maskBytes(buf []byte, key [4]byte) {
	for i := range buf {
		buf[i] ^= key[i%4]
	}
}
