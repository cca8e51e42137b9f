package audio

import (
	"testing"
	"time"
)

func TestEncodeFloat32Clamps(t *testing.T) {
	pcm := EncodeFloat32([]float32{0, 0.5, 1.5, -1.5})
	if len(pcm) != 8 {
		t.Fatalf("len=%d, want 8", len(pcm))
	}
	samples, err := DecodeToFloat32(pcm)
	if err != nil {
		t.Fatalf("DecodeToFloat32: %v", err)
	}
	if samples[0] != 0 {
		t.Fatalf("sample 0 = %v, want 0", samples[0])
	}
	if samples[1] < 0.49 || samples[1] > 0.51 {
		t.Fatalf("sample 1 = %v, want ~0.5", samples[1])
	}
	// Over-range inputs pin at full scale.
	if samples[2] < 0.999 {
		t.Fatalf("sample 2 = %v, want full scale", samples[2])
	}
	if samples[3] != -1 {
		t.Fatalf("sample 3 = %v, want -1", samples[3])
	}
}

func TestDecodeOddLength(t *testing.T) {
	if _, err := DecodeToFloat32([]byte{0x01}); err == nil {
		t.Fatalf("expected error for odd payload")
	}
}

func TestDuration(t *testing.T) {
	// One second of capture audio: 16000 samples, 2 bytes each.
	if got := Duration(CaptureRate*2, CaptureRate); got != time.Second {
		t.Fatalf("Duration=%v, want 1s", got)
	}
	if got := Duration(PlaybackRate/10*2, PlaybackRate); got != 100*time.Millisecond {
		t.Fatalf("Duration=%v, want 100ms", got)
	}
	if got := Duration(0, CaptureRate); got != 0 {
		t.Fatalf("Duration(0)=%v, want 0", got)
	}
}

func TestBase64RoundTrip(t *testing.T) {
	pcm := EncodeFloat32([]float32{0.1, -0.2, 0.3})
	got, err := DecodeBase64(EncodeBase64(pcm))
	if err != nil {
		t.Fatalf("DecodeBase64: %v", err)
	}
	if string(got) != string(pcm) {
		t.Fatalf("round trip mismatch")
	}
	if _, err := DecodeBase64("not base64!!"); err == nil {
		t.Fatalf("expected error for invalid base64")
	}
}
