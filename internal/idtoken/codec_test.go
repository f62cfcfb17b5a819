package idtoken

import (
	"encoding/base64"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seg(s string) string { return base64.RawURLEncoding.EncodeToString([]byte(s)) }

func TestDecode_RoundTrip(t *testing.T) {
	raw, err := EncodeUnsigned(Claims{"sub": "abc", "cognito:username": "alice"})
	require.NoError(t, err)

	c, err := Decode(raw)
	require.NoError(t, err)
	assert.Equal(t, "alice", c["cognito:username"])
	assert.Equal(t, "abc", c["sub"])
}

func TestDecode_ValueTypes(t *testing.T) {
	raw := seg(`{"alg":"RS256"}`) + "." + seg(`{"n":42,"b":true,"l":["x"],"m":{"k":"v"}}`) + ".sig"
	c, err := Decode(raw)
	require.NoError(t, err)
	assert.Equal(t, float64(42), c["n"])
	assert.Equal(t, true, c["b"])
	assert.Equal(t, []any{"x"}, c["l"])
	assert.Equal(t, map[string]any{"k": "v"}, c["m"])
}

func TestDecode_UnknownAlgIsNotMalformed(t *testing.T) {
	raw := seg(`{"alg":"XX999"}`) + "." + seg(`{"email":"a@b"}`) + ".zzz"
	c, err := Decode(raw)
	require.NoError(t, err)
	assert.Equal(t, "a@b", c["email"])
}

func TestDecode_Malformed(t *testing.T) {
	cases := map[string]string{
		"empty":          "",
		"one segment":    "abc",
		"two segments":   seg(`{}`) + "." + seg(`{}`),
		"four segments":  seg(`{}`) + "." + seg(`{}`) + ".a.b",
		"bad base64":     seg(`{"alg":"none"}`) + ".***." + "x",
		"payload not js": seg(`{"alg":"none"}`) + "." + seg(`not json`) + ".x",
		"payload array":  seg(`{"alg":"none"}`) + "." + seg(`[1,2]`) + ".x",
		"payload null":   seg(`{"alg":"none"}`) + "." + seg(`null`) + ".x",
		"bad header":     "!!." + seg(`{}`) + ".x",
	}
	for name, raw := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Decode(raw)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrMalformedToken), "got %v", err)
		})
	}
}
