package recognition

import (
	"encoding/binary"
	"fmt"
	"math"
)

// EncodingDim is the dimensionality of a face encoding.
const EncodingDim = 128

const encodingByteLen = EncodingDim * 8

// MarshalEncoding packs a face encoding into its storage representation:
// 128 little-endian float64 values, 1024 bytes. The layout must round-trip
// exactly; it is the only byte format this package owns.
func MarshalEncoding(vec []float64) ([]byte, error) {
	if len(vec) != EncodingDim {
		return nil, fmt.Errorf("encoding has %d elements, want %d", len(vec), EncodingDim)
	}
	buf := make([]byte, encodingByteLen)
	for i, v := range vec {
		binary.LittleEndian.PutUint64(buf[i*8:], math.Float64bits(v))
	}
	return buf, nil
}

// UnmarshalEncoding is the inverse of MarshalEncoding.
func UnmarshalEncoding(raw []byte) ([]float64, error) {
	if len(raw) != encodingByteLen {
		return nil, fmt.Errorf("encoding blob is %d bytes, want %d", len(raw), encodingByteLen)
	}
	vec := make([]float64, EncodingDim)
	for i := range vec {
		vec[i] = math.Float64frombits(binary.LittleEndian.Uint64(raw[i*8:]))
	}
	return vec, nil
}
