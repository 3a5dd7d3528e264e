package protocol

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"chirpd/internal/pkg/errs"
)

func TestEncodeDecode_Msg(t *testing.T) {
	req := require.New(t)

	original := Msg{Sender: "alice", Target: "#team", Text: "hello there"}

	frame, err := Encode(original)
	req.NoError(err)
	req.Len(frame, FrameSize)
	req.Equal(byte(OpMsg), frame[0])

	decoded, err := Decode(frame)
	req.NoError(err)
	req.Equal(original, decoded)
}

func TestEncodeDecode_AllVariants(t *testing.T) {
	commands := []Command{
		Ok{},
		Err{Message: "something broke"},
		Usr{Name: "alice", Password: "wonderland"},
		Join{Name: "#team"},
		Leave{Name: "#team"},
		ListUsr{Group: "#team", Op: ListOpAdd, Username: "bob"},
	}

	for _, cmd := range commands {
		frame, err := Encode(cmd)
		require.NoError(t, err)

		decoded, err := Decode(frame)
		require.NoError(t, err)
		assert.Equal(t, cmd, decoded)
	}
}

func TestDecode_UnknownOpcode(t *testing.T) {
	frame := make([]byte, FrameSize)
	frame[0] = 0xAB

	_, err := Decode(frame)
	require.Error(t, err)
	assert.True(t, errs.HasCode(err, errs.ErrBadOpcode))
}

func TestDecode_WrongFrameSize(t *testing.T) {
	_, err := Decode(make([]byte, 10))
	require.Error(t, err)
	assert.True(t, errs.HasCode(err, errs.ErrBadFrameSize))
}

func TestEncode_FieldTooLong(t *testing.T) {
	tooLong := strings.Repeat("x", FieldSize+1)

	_, err := Encode(Join{Name: tooLong})
	require.Error(t, err)
	assert.True(t, errs.HasCode(err, errs.ErrFieldTooLong))
}

func TestEncode_MaxLengthFieldFits(t *testing.T) {
	req := require.New(t)

	name := strings.Repeat("n", FieldSize)
	frame, err := Encode(Join{Name: name})
	req.NoError(err)

	decoded, err := Decode(frame)
	req.NoError(err)
	req.Equal(Join{Name: name}, decoded)
}

func TestIsGroupName(t *testing.T) {
	assert.True(t, IsGroupName("#team"))
	assert.False(t, IsGroupName("alice"))
	assert.False(t, IsGroupName(""))
}
