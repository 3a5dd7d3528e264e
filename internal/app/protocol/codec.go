/*
Package protocol defines the command vocabulary and the fixed-size frame codec
exchanged between chirpd clients and the server.

This file implements the codec: every Command is carried in exactly one frame of
FrameSize bytes. Encoding and decoding are total over the frame size and
deterministic; a frame never references data outside itself.
*/
package protocol

import (
	"bytes"

	"chirpd/internal/pkg/errs"
)

const (
	// FrameSize is the fixed length of every wire frame in bytes.
	FrameSize = 1024

	// FieldSize is the fixed width of every name, target, and password slot.
	FieldSize = 64
)

// Opcode identifies the Command variant carried by a frame. It occupies byte 0.
type Opcode byte

const (
	OpOk      Opcode = 0x01
	OpErr     Opcode = 0x02
	OpUsr     Opcode = 0x03
	OpMsg     Opcode = 0x04
	OpJoin    Opcode = 0x05
	OpLeave   Opcode = 0x06
	OpListUsr Opcode = 0x07
)

// Frame slot offsets. String fields are NUL-padded to their slot width; free
// text fills the remainder of the frame after the fixed slots.
const (
	fieldA        = 1                  // first fixed slot
	fieldB        = fieldA + FieldSize // second fixed slot
	fieldC        = fieldB + FieldSize // start of free text (Msg) / end of Usr
	listOp        = fieldB             // ListUsr operation byte
	listUserStart = listOp + 1         // ListUsr member slot
	listUserEnd   = listUserStart + FieldSize
)

// Encode serializes cmd into a new frame of exactly FrameSize bytes.
// A field value longer than its slot is rejected with ErrFieldTooLong rather
// than silently truncated.
func Encode(cmd Command) ([]byte, error) {
	frame := make([]byte, FrameSize)
	frame[0] = byte(cmd.Opcode())

	switch c := cmd.(type) {
	case Ok:
		// opcode only

	case Err:
		if err := putField(frame[fieldA:FrameSize], c.Message); err != nil {
			return nil, err
		}

	case Usr:
		if err := putField(frame[fieldA:fieldB], c.Name); err != nil {
			return nil, err
		}
		if err := putField(frame[fieldB:fieldC], c.Password); err != nil {
			return nil, err
		}

	case Msg:
		if err := putField(frame[fieldA:fieldB], c.Sender); err != nil {
			return nil, err
		}
		if err := putField(frame[fieldB:fieldC], c.Target); err != nil {
			return nil, err
		}
		if err := putField(frame[fieldC:FrameSize], c.Text); err != nil {
			return nil, err
		}

	case Join:
		if err := putField(frame[fieldA:fieldB], c.Name); err != nil {
			return nil, err
		}

	case Leave:
		if err := putField(frame[fieldA:fieldB], c.Name); err != nil {
			return nil, err
		}

	case ListUsr:
		if err := putField(frame[fieldA:fieldB], c.Group); err != nil {
			return nil, err
		}
		frame[listOp] = byte(c.Op)
		if err := putField(frame[listUserStart:listUserEnd], c.Username); err != nil {
			return nil, err
		}

	default:
		return nil, errs.NewError(errs.ErrBadOpcode, byte(cmd.Opcode()))
	}

	return frame, nil
}

// Decode parses one frame back into a Command. The frame must be exactly
// FrameSize bytes; an opcode outside the vocabulary is a codec error.
func Decode(frame []byte) (Command, error) {
	if len(frame) != FrameSize {
		return nil, errs.NewError(errs.ErrBadFrameSize, FrameSize, len(frame))
	}

	switch Opcode(frame[0]) {
	case OpOk:
		return Ok{}, nil

	case OpErr:
		return Err{Message: field(frame[fieldA:FrameSize])}, nil

	case OpUsr:
		return Usr{
			Name:     field(frame[fieldA:fieldB]),
			Password: field(frame[fieldB:fieldC]),
		}, nil

	case OpMsg:
		return Msg{
			Sender: field(frame[fieldA:fieldB]),
			Target: field(frame[fieldB:fieldC]),
			Text:   field(frame[fieldC:FrameSize]),
		}, nil

	case OpJoin:
		return Join{Name: field(frame[fieldA:fieldB])}, nil

	case OpLeave:
		return Leave{Name: field(frame[fieldA:fieldB])}, nil

	case OpListUsr:
		return ListUsr{
			Group:    field(frame[fieldA:fieldB]),
			Op:       ListOp(frame[listOp]),
			Username: field(frame[listUserStart:listUserEnd]),
		}, nil

	default:
		return nil, errs.NewError(errs.ErrBadOpcode, frame[0])
	}
}

// putField writes s NUL-padded into slot, rejecting values that do not fit.
func putField(slot []byte, s string) error {
	if len(s) > len(slot) {
		return errs.NewError(errs.ErrFieldTooLong, s)
	}
	copy(slot, s)
	return nil
}

// field reads a NUL-padded string back out of slot.
func field(slot []byte) string {
	if i := bytes.IndexByte(slot, 0); i >= 0 {
		return string(slot[:i])
	}
	return string(slot)
}
