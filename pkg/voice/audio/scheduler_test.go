package audio

import (
	"sync"
	"testing"
	"time"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Duration
}

func (c *fakeClock) Now() time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) advance(d time.Duration) {
	c.mu.Lock()
	c.now += d
	c.mu.Unlock()
}

type fakePlayer struct {
	mu      sync.Mutex
	played  []Source
	stopped []uint64
}

func (p *fakePlayer) Play(src Source) {
	p.mu.Lock()
	p.played = append(p.played, src)
	p.mu.Unlock()
}

func (p *fakePlayer) Stop(id uint64) {
	p.mu.Lock()
	p.stopped = append(p.stopped, id)
	p.mu.Unlock()
}

// 100ms of PCM16 at the playback rate.
func chunk100ms() []byte {
	return make([]byte, PlaybackRate/10*2)
}

func TestScheduleGapless(t *testing.T) {
	clock := &fakeClock{}
	player := &fakePlayer{}
	s := NewScheduler(clock, player, PlaybackRate)

	a, err := s.Schedule(chunk100ms())
	if err != nil {
		t.Fatalf("Schedule: %v", err)
	}
	b, _ := s.Schedule(chunk100ms())
	c, _ := s.Schedule(chunk100ms())

	if a.Start != 0 {
		t.Fatalf("first start=%v, want 0", a.Start)
	}
	if b.Start != a.End || c.Start != b.End {
		t.Fatalf("starts not contiguous: a.End=%v b.Start=%v b.End=%v c.Start=%v", a.End, b.Start, b.End, c.Start)
	}
	if a.End != 100*time.Millisecond {
		t.Fatalf("a.End=%v, want 100ms", a.End)
	}
}

func TestScheduleLateFrameStartsNow(t *testing.T) {
	clock := &fakeClock{}
	s := NewScheduler(clock, &fakePlayer{}, PlaybackRate)

	a, _ := s.Schedule(chunk100ms())
	// Playback has drained past the end of the first chunk before the next
	// frame arrives.
	clock.advance(500 * time.Millisecond)
	b, _ := s.Schedule(chunk100ms())

	if b.Start != 500*time.Millisecond {
		t.Fatalf("late frame start=%v, want 500ms", b.Start)
	}
	if b.Start < a.End {
		t.Fatalf("starts overlap: a.End=%v b.Start=%v", a.End, b.Start)
	}
}

func TestInterruptPurgesAndRewinds(t *testing.T) {
	clock := &fakeClock{}
	player := &fakePlayer{}
	s := NewScheduler(clock, player, PlaybackRate)

	s.Schedule(chunk100ms())
	s.Schedule(chunk100ms())
	s.Schedule(chunk100ms())
	if got := s.Pending(); got != 3 {
		t.Fatalf("Pending=%d, want 3", got)
	}

	s.Interrupt()

	if got := s.Pending(); got != 0 {
		t.Fatalf("Pending after interrupt=%d, want 0", got)
	}
	if len(player.stopped) != 3 {
		t.Fatalf("stopped %d sources, want 3", len(player.stopped))
	}

	// The clock is still at zero, so the next chunk starts immediately
	// instead of queueing behind purged audio.
	next, _ := s.Schedule(chunk100ms())
	if next.Start != 0 {
		t.Fatalf("post-interrupt start=%v, want 0", next.Start)
	}
}

func TestDoneReleasesSource(t *testing.T) {
	s := NewScheduler(&fakeClock{}, &fakePlayer{}, PlaybackRate)
	src, _ := s.Schedule(chunk100ms())
	s.Done(src.ID)
	if got := s.Pending(); got != 0 {
		t.Fatalf("Pending=%d, want 0", got)
	}
}

func TestCloseIdempotent(t *testing.T) {
	player := &fakePlayer{}
	s := NewScheduler(&fakeClock{}, player, PlaybackRate)
	s.Schedule(chunk100ms())

	s.Close()
	s.Close()

	if got := s.Pending(); got != 0 {
		t.Fatalf("Pending after close=%d, want 0", got)
	}
	if _, err := s.Schedule(chunk100ms()); err != ErrSchedulerClosed {
		t.Fatalf("Schedule after close err=%v, want ErrSchedulerClosed", err)
	}
	if len(player.stopped) != 1 {
		t.Fatalf("stopped %d sources across double close, want 1", len(player.stopped))
	}
}
