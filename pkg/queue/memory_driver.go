package queue

import "context"

// memoryBuffer bounds the in-process queue. Alert volume is a handful of
// jobs per reservation, so a full buffer means the workers are stuck.
const memoryBuffer = 1000

// MemoryDriver is an in-process, channel-backed queue driver. It is the
// default when no Redis connection is configured; jobs do not survive a
// restart of the dashboard.
type MemoryDriver struct {
	ch chan []byte
}

// NewMemoryDriver creates an in-memory queue.
func NewMemoryDriver() *MemoryDriver {
	return &MemoryDriver{ch: make(chan []byte, memoryBuffer)}
}

func (d *MemoryDriver) Push(payload []byte) error {
	d.ch <- payload
	return nil
}

func (d *MemoryDriver) Pop(ctx context.Context) ([]byte, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case payload := <-d.ch:
		return payload, nil
	}
}
