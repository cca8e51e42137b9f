package audio

import (
	"errors"
	"sync"
	"time"
)

// ErrSchedulerClosed is returned by Schedule after Close.
var ErrSchedulerClosed = errors.New("audio: scheduler closed")

// Clock reports elapsed playback time. Injectable so scheduling math is
// testable without real time.
type Clock interface {
	Now() time.Duration
}

// Player receives scheduled sources. Play is called with the scheduler lock
// released; Stop must discard a source that has not finished.
type Player interface {
	Play(src Source)
	Stop(id uint64)
}

// Source is one scheduled chunk of playback audio.
type Source struct {
	ID    uint64
	Start time.Duration
	End   time.Duration
	PCM   []byte
}

// Scheduler assigns gapless, monotonically non-overlapping start times to
// decoded audio chunks. Chunks begin at max(clock now, previous end) so
// back-to-back frames play seamlessly and a late frame starts immediately.
type Scheduler struct {
	clock  Clock
	player Player
	rate   int

	mu      sync.Mutex
	next    time.Duration
	nextID  uint64
	pending map[uint64]Source
	closed  bool
}

// NewScheduler builds a scheduler for PCM16 audio at the given sample rate.
func NewScheduler(clock Clock, player Player, sampleRate int) *Scheduler {
	return &Scheduler{
		clock:   clock,
		player:  player,
		rate:    sampleRate,
		pending: make(map[uint64]Source),
	}
}

// Schedule queues one PCM16 chunk and hands it to the player with its
// assigned start time.
func (s *Scheduler) Schedule(pcm []byte) (Source, error) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return Source{}, ErrSchedulerClosed
	}

	start := s.clock.Now()
	if s.next > start {
		start = s.next
	}
	dur := Duration(len(pcm), s.rate)

	s.nextID++
	src := Source{ID: s.nextID, Start: start, End: start + dur, PCM: pcm}
	s.next = src.End
	s.pending[src.ID] = src
	s.mu.Unlock()

	s.player.Play(src)
	return src, nil
}

// Done releases a source the player finished naturally.
func (s *Scheduler) Done(id uint64) {
	s.mu.Lock()
	delete(s.pending, id)
	s.mu.Unlock()
}

// Interrupt stops and discards every pending source and rewinds the schedule
// to zero, so audio after a barge-in starts fresh.
func (s *Scheduler) Interrupt() {
	s.mu.Lock()
	stopped := make([]uint64, 0, len(s.pending))
	for id := range s.pending {
		stopped = append(stopped, id)
	}
	s.pending = make(map[uint64]Source)
	s.next = 0
	s.mu.Unlock()

	for _, id := range stopped {
		s.player.Stop(id)
	}
}

// Pending reports how many scheduled sources have not finished or been
// stopped.
func (s *Scheduler) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.pending)
}

// Close interrupts outstanding playback and rejects further scheduling. Safe
// to call more than once.
func (s *Scheduler) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	s.mu.Unlock()
	s.Interrupt()
}

type monotonicClock struct {
	start time.Time
}

// NewMonotonicClock returns a clock measuring elapsed wall time from now.
func NewMonotonicClock() Clock {
	return &monotonicClock{start: time.Now()}
}

func (c *monotonicClock) Now() time.Duration {
	return time.Since(c.start)
}
