package app

import (
	"time"

	"github.com/chewxy/math32"
)

// FrameStats keeps a fixed-size FIFO of frame times and the total running
// time. It starts filled with zero samples.
type FrameStats struct {
	samples []float32 // seconds, oldest first
	elapsed time.Duration
}

// NewFrameStats returns stats over a window of n samples. n below 1 is
// treated as 1.
func NewFrameStats(n int) *FrameStats {
	return &FrameStats{samples: make([]float32, max(n, 1))}
}

// Push drops the oldest sample, appends d and adds it to the total.
func (s *FrameStats) Push(d time.Duration) {
	copy(s.samples, s.samples[1:])
	s.samples[len(s.samples)-1] = float32(d.Seconds())
	s.elapsed += d
}

// Len returns the window size. It never changes.
func (s *FrameStats) Len() int { return len(s.samples) }

// Samples returns a copy of the window, oldest first, in seconds.
func (s *FrameStats) Samples() []float32 {
	out := make([]float32, len(s.samples))
	copy(out, s.samples)
	return out
}

// Mean returns the mean frame time in seconds over the non-zero samples,
// or 0 when every sample is zero.
func (s *FrameStats) Mean() float32 {
	var sum float32
	n := 0
	for _, v := range s.samples {
		if v > 0 {
			sum += v
			n++
		}
	}
	if n == 0 {
		return 0
	}
	return sum / float32(n)
}

// FPS returns 1/Mean, or 0 when there is nothing to average.
func (s *FrameStats) FPS() float32 {
	mean := s.Mean()
	if mean <= 0 {
		return 0
	}
	fps := 1 / mean
	if math32.IsInf(fps, 0) || math32.IsNaN(fps) {
		return 0
	}
	return fps
}

// Elapsed returns the sum of every pushed duration.
func (s *FrameStats) Elapsed() time.Duration { return s.elapsed }
