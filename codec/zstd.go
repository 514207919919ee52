package codec

import (
	"github.com/klauspost/compress/zstd"
)

// Zstd compresses payloads with zstandard. The encoder and decoder are
// created once and shared; EncodeAll/DecodeAll are safe for concurrent use.
type Zstd struct {
	enc *zstd.Encoder
	dec *zstd.Decoder
}

// NewZstd returns a zstd codec tuned for small JSON payloads.
func NewZstd() (*Zstd, error) {
	enc, err := zstd.NewWriter(nil,
		zstd.WithEncoderLevel(zstd.SpeedDefault),
		zstd.WithEncoderConcurrency(1),
	)
	if err != nil {
		return nil, err
	}
	dec, err := zstd.NewReader(nil, zstd.WithDecoderConcurrency(0))
	if err != nil {
		enc.Close()
		return nil, err
	}
	return &Zstd{enc: enc, dec: dec}, nil
}

func (z *Zstd) Name() string     { return "zstd" }
func (z *Zstd) Compresses() bool { return true }

func (z *Zstd) Encode(p []byte) ([]byte, error) {
	return z.enc.EncodeAll(p, make([]byte, 0, len(p)/2)), nil
}

func (z *Zstd) Decode(p []byte) ([]byte, error) {
	return z.dec.DecodeAll(p, nil)
}

// Close releases the decoder goroutines.
func (z *Zstd) Close() {
	z.dec.Close()
	_ = z.enc.Close()
}
