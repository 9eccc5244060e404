package results

import (
	"encoding/binary"
	"math"
)

// #region state-encoding

// encodeState packs a complex vector as little-endian (real, imag)
// float64 pairs.
func encodeState(v []complex128) []byte {
	buf := make([]byte, len(v)*16)
	for i, c := range v {
		binary.LittleEndian.PutUint64(buf[i*16:], math.Float64bits(real(c)))
		binary.LittleEndian.PutUint64(buf[i*16+8:], math.Float64bits(imag(c)))
	}
	return buf
}

func decodeState(b []byte) []complex128 {
	v := make([]complex128, len(b)/16)
	for i := range v {
		re := math.Float64frombits(binary.LittleEndian.Uint64(b[i*16:]))
		im := math.Float64frombits(binary.LittleEndian.Uint64(b[i*16+8:]))
		v[i] = complex(re, im)
	}
	return v
}

// #endregion state-encoding
