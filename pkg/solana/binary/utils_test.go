package binary

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFieldCodecs(t *testing.T) {
	b := make([]byte, 2+8+1+StringSize("metaverf"))

	var offset int
	PutUint16(b[offset:], 513, &offset)
	PutInt64(b[offset:], -42, &offset)
	PutBool(b[offset:], true, &offset)
	PutString(b[offset:], "metaverf", &offset)
	require.Equal(t, len(b), offset)

	assert.Equal(t, []byte{0x01, 0x02}, b[:2])

	var u16 uint16
	var i64 int64
	var flag bool
	var s string

	offset = 0
	GetUint16(b[offset:], &u16, &offset)
	GetInt64(b[offset:], &i64, &offset)
	GetBool(b[offset:], &flag, &offset)
	require.True(t, GetString(b[offset:], &s, &offset))

	assert.EqualValues(t, 513, u16)
	assert.EqualValues(t, -42, i64)
	assert.True(t, flag)
	assert.Equal(t, "metaverf", s)
	assert.Equal(t, len(b), offset)
}

func TestGetString_Overrun(t *testing.T) {
	var s string
	var offset int

	assert.False(t, GetString([]byte{0x01}, &s, &offset))
	assert.False(t, GetString([]byte{0x05, 0x00, 0x00, 0x00, 'a'}, &s, &offset))
	assert.Zero(t, offset)
}
