// Package audio holds PCM conversion helpers and the playback scheduler used
// on the listening side of a voice session.
package audio

import (
	"encoding/base64"
	"fmt"
	"time"
)

// Wire formats for a voice session: 16 kHz mono PCM16 up, 24 kHz mono PCM16
// down.
const (
	CaptureRate    = 16000
	PlaybackRate   = 24000
	bytesPerSample = 2
)

// EncodeFloat32 converts float32 samples in [-1, 1] to little-endian PCM16
// bytes. Out-of-range samples are clamped.
func EncodeFloat32(samples []float32) []byte {
	out := make([]byte, len(samples)*bytesPerSample)
	for i, s := range samples {
		v := int32(s * 32768)
		if v > 32767 {
			v = 32767
		} else if v < -32768 {
			v = -32768
		}
		out[i*2] = byte(v)
		out[i*2+1] = byte(v >> 8)
	}
	return out
}

// DecodeToFloat32 converts little-endian PCM16 bytes to float32 samples in
// [-1, 1]. A trailing odd byte is an error.
func DecodeToFloat32(pcm []byte) ([]float32, error) {
	if len(pcm)%bytesPerSample != 0 {
		return nil, fmt.Errorf("pcm16 payload has odd length %d", len(pcm))
	}
	out := make([]float32, len(pcm)/bytesPerSample)
	for i := range out {
		v := int16(pcm[i*2]) | int16(pcm[i*2+1])<<8
		out[i] = float32(v) / 32768
	}
	return out, nil
}

// Duration reports how long the given PCM16 payload plays at the sample rate.
func Duration(nBytes, sampleRate int) time.Duration {
	if sampleRate <= 0 || nBytes <= 0 {
		return 0
	}
	samples := nBytes / bytesPerSample
	return time.Duration(samples) * time.Second / time.Duration(sampleRate)
}

// EncodeBase64 wraps PCM bytes for a JSON frame.
func EncodeBase64(pcm []byte) string {
	return base64.StdEncoding.EncodeToString(pcm)
}

// DecodeBase64 unwraps a JSON frame payload back to PCM bytes.
func DecodeBase64(s string) ([]byte, error) {
	b, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("decode audio payload: %w", err)
	}
	return b, nil
}
