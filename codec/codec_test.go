package codec

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestZstdRoundTrip(t *testing.T) {
	t.Parallel()

	z, err := NewZstd()
	require.NoError(t, err)
	defer z.Close()

	payload := bytes.Repeat([]byte(`{"id":1,"title":"hello"},`), 200)
	enc, err := z.Encode(payload)
	require.NoError(t, err)
	assert.Less(t, len(enc), len(payload))

	dec, err := z.Decode(enc)
	require.NoError(t, err)
	assert.Equal(t, payload, dec)
}

func TestByName(t *testing.T) {
	t.Parallel()

	c, err := ByName("")
	require.NoError(t, err)
	assert.Equal(t, "identity", c.Name())
	assert.False(t, c.Compresses())

	c, err = ByName("ZSTD")
	require.NoError(t, err)
	assert.Equal(t, "zstd", c.Name())
	assert.True(t, c.Compresses())

	_, err = ByName("brotli")
	assert.Error(t, err)
}

func TestParseName(t *testing.T) {
	t.Parallel()

	for in, want := range map[string]string{"": "identity", "NONE": "identity", " Zstd ": "zstd"} {
		got, err := ParseName(in)
		require.NoError(t, err)
		assert.Equal(t, want, got, in)
	}
	_, err := ParseName("brotli")
	assert.Error(t, err)
}

func TestSealDetectsCorruption(t *testing.T) {
	t.Parallel()

	sealed := Seal([]byte(`{"data":[1,2,3]}`))
	got, err := Open(sealed)
	require.NoError(t, err)
	assert.Equal(t, []byte(`{"data":[1,2,3]}`), got)

	sealed[len(sealed)-2] ^= 0xff
	_, err = Open(sealed)
	assert.Error(t, err)

	_, err = Open([]byte{1, 2})
	assert.Error(t, err)
}
