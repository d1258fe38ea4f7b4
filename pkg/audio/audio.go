// Package audio converts between float sample buffers and the PCM byte
// formats speech backends exchange, writes WAV files, and resamples
// waveforms between sampling rates.
package audio

import "math"

// DecodePCM16 converts little-endian 16-bit signed PCM bytes into float
// samples in [-1, 1]. A trailing odd byte is ignored.
func DecodePCM16(b []byte) []float32 {
	n := len(b) / 2
	samples := make([]float32, n)
	for i := 0; i < n; i++ {
		s := int16(b[i*2]) | int16(b[i*2+1])<<8
		samples[i] = float32(s) / 32768.0
	}
	return samples
}

// EncodePCM16 converts float samples into little-endian 16-bit signed PCM
// bytes, clamping out-of-range values.
func EncodePCM16(samples []float32) []byte {
	b := make([]byte, len(samples)*2)
	for i, f := range samples {
		s := int16(clamp(f) * 32767.0)
		b[i*2] = byte(s)
		b[i*2+1] = byte(s >> 8)
	}
	return b
}

func clamp(f float32) float32 {
	if f > 1.0 {
		return 1.0
	}
	if f < -1.0 {
		return -1.0
	}
	if f != f { // NaN
		return 0
	}
	return f
}

// Duration returns the playback length in seconds of a mono sample buffer
// at the given rate, or 0 when the rate is unknown.
func Duration(samples []float32, rate int) float64 {
	if rate <= 0 {
		return 0
	}
	return float64(len(samples)) / float64(rate)
}

// Peak returns the largest absolute sample value.
func Peak(samples []float32) float32 {
	var peak float32
	for _, f := range samples {
		if a := float32(math.Abs(float64(f))); a > peak {
			peak = a
		}
	}
	return peak
}
