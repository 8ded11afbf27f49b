package session

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCodecRoundTrip(t *testing.T) {
	codec := NewCodec("secret", time.Hour)

	token, err := codec.Encode("abc-123")
	require.NoError(t, err)

	id, err := codec.Decode(token)
	require.NoError(t, err)
	assert.Equal(t, "abc-123", id)
}

func TestCodecRejectsForeignSignature(t *testing.T) {
	token, err := NewCodec("other", time.Hour).Encode("abc-123")
	require.NoError(t, err)

	_, err = NewCodec("secret", time.Hour).Decode(token)
	assert.Error(t, err)
}

func TestCodecRejectsExpired(t *testing.T) {
	codec := NewCodec("secret", -time.Minute)
	token, err := codec.Encode("abc-123")
	require.NoError(t, err)

	_, err = codec.Decode(token)
	assert.Error(t, err)
}

func TestCodecRejectsGarbage(t *testing.T) {
	_, err := NewCodec("secret", time.Hour).Decode("not-a-token")
	assert.Error(t, err)
}
