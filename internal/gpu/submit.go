package gpu

import (
	"errors"
	"fmt"
	"time"

	"github.com/gogpu/wgpu/hal"
)

// Submission errors.
var (
	// ErrSubmitterClosed is returned when submitting after Destroy.
	ErrSubmitterClosed = errors.New("gpu: submitter is closed")

	// ErrFenceTimeout is returned when the GPU does not reach a fence value
	// within fenceWaitTimeout.
	ErrFenceTimeout = errors.New("gpu: fence wait timed out")
)

// fenceWaitTimeout bounds a single wait for an in-flight submission.
const fenceWaitTimeout = 5 * time.Second

// submission is one queue submission and the resources that must outlive it.
type submission struct {
	value   uint64
	cmdBuf  hal.CommandBuffer
	release []func()
}

// Submitter submits command buffers with a monotonically increasing fence
// value and frees them, together with any resources deferred onto them,
// once the GPU has signaled that value.
//
// At most maxInFlight submissions are left outstanding. Submit blocks on
// the oldest one only when that bound is exceeded, which is what throttles
// the CPU when the GPU falls behind.
type Submitter struct {
	device hal.Device
	queue  hal.Queue
	fence  hal.Fence

	value       uint64
	maxInFlight int
	pending     []submission
	closed      bool
}

// NewSubmitter creates a submitter with its own fence.
// maxInFlight values below 1 are treated as 1.
func NewSubmitter(device hal.Device, queue hal.Queue, maxInFlight int) (*Submitter, error) {
	fence, err := device.CreateFence()
	if err != nil {
		return nil, fmt.Errorf("create fence: %w", err)
	}
	return &Submitter{
		device:      device,
		queue:       queue,
		fence:       fence,
		maxInFlight: max(maxInFlight, 1),
	}, nil
}

// Submit submits cmdBuf. Ownership of cmdBuf passes to the submitter; the
// release callbacks run after the GPU has finished with it.
func (s *Submitter) Submit(cmdBuf hal.CommandBuffer, release ...func()) error {
	if s.closed {
		s.device.FreeCommandBuffer(cmdBuf)
		runAll(release)
		return ErrSubmitterClosed
	}

	value := s.value + 1
	if err := s.queue.Submit([]hal.CommandBuffer{cmdBuf}, s.fence, value); err != nil {
		s.device.FreeCommandBuffer(cmdBuf)
		runAll(release)
		return fmt.Errorf("submit: %w", err)
	}
	s.value = value
	s.pending = append(s.pending, submission{value: value, cmdBuf: cmdBuf, release: release})

	return s.reclaim(s.maxInFlight)
}

// Defer schedules fn to run once the most recent submission has completed.
// With nothing in flight fn runs immediately.
func (s *Submitter) Defer(fn func()) {
	if len(s.pending) == 0 {
		fn()
		return
	}
	last := &s.pending[len(s.pending)-1]
	last.release = append(last.release, fn)
}

// InFlight returns the number of submissions not yet reclaimed.
func (s *Submitter) InFlight() int {
	return len(s.pending)
}

// WaitIdle waits for every outstanding submission and releases it.
func (s *Submitter) WaitIdle() error {
	return s.reclaim(0)
}

// Destroy waits for outstanding work and releases the fence.
// Safe to call multiple times.
func (s *Submitter) Destroy() {
	if s.closed {
		return
	}
	if err := s.WaitIdle(); err != nil {
		logger().Warn("gpu: wait idle on destroy", "error", err)
		// Release what is left anyway; the device is about to go away.
		for _, p := range s.pending {
			s.device.FreeCommandBuffer(p.cmdBuf)
			runAll(p.release)
		}
		s.pending = nil
	}
	s.device.DestroyFence(s.fence)
	s.fence = nil
	s.closed = true
}

// reclaim waits for the oldest submissions until at most keep remain.
func (s *Submitter) reclaim(keep int) error {
	for len(s.pending) > keep {
		p := s.pending[0]
		ok, err := s.device.Wait(s.fence, p.value, fenceWaitTimeout)
		if err != nil {
			return fmt.Errorf("wait for fence value %d: %w", p.value, err)
		}
		if !ok {
			return fmt.Errorf("%w (value %d)", ErrFenceTimeout, p.value)
		}
		s.device.FreeCommandBuffer(p.cmdBuf)
		runAll(p.release)
		s.pending = s.pending[1:]
	}
	return nil
}

func runAll(fns []func()) {
	for _, fn := range fns {
		fn()
	}
}
