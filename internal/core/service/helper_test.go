package service

import (
	"bytes"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/yndnr/docmesh-go/internal/core/replica"
	"github.com/yndnr/docmesh-go/internal/core/replica/oplog"
	"github.com/yndnr/docmesh-go/internal/protocol"
	"github.com/yndnr/docmesh-go/internal/telemetry/logger"
)

// fakePeer records frames queued to it.
type fakePeer struct {
	id     string
	frames chan []byte
	full   atomic.Bool
	closed atomic.Int32
}

func newFakePeer(id string) *fakePeer {
	return &fakePeer{id: id, frames: make(chan []byte, 64)}
}

func (p *fakePeer) ID() string { return p.id }

func (p *fakePeer) Send(frame []byte) bool {
	if p.full.Load() {
		return false
	}
	select {
	case p.frames <- frame:
		return true
	default:
		return false
	}
}

func (p *fakePeer) Close() { p.closed.Add(1) }

func (p *fakePeer) isClosed() bool { return p.closed.Load() > 0 }

// expectUpdate waits for a sync update frame carrying want.
func (p *fakePeer) expectUpdate(t *testing.T, want []byte) {
	t.Helper()
	select {
	case frame := <-p.frames:
		f, err := protocol.Decode(frame)
		if err != nil {
			t.Fatalf("%s: Decode() error = %v", p.id, err)
		}
		if f.Channel != protocol.ChannelSync || f.Type != protocol.SyncUpdate {
			t.Fatalf("%s: got %s/%s frame, want sync/update", p.id, f.Channel, f.Type)
		}
		if !bytes.Equal(f.Payload, want) {
			t.Fatalf("%s: payload differs from the merged update", p.id)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("%s: no frame received", p.id)
	}
}

// expectNothing asserts no frame arrives within a short window.
func (p *fakePeer) expectNothing(t *testing.T) {
	t.Helper()
	select {
	case <-p.frames:
		t.Fatalf("%s: unexpected frame", p.id)
	case <-time.After(100 * time.Millisecond):
	}
}

// fakeClock is a manually advanced time source.
type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{t: time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.t = c.t.Add(d)
	c.mu.Unlock()
}

func newTestRegistry(clock *fakeClock) *Registry {
	opts := []RegistryOption{WithLogger(logger.Nop())}
	if clock != nil {
		opts = append(opts, WithClock(clock.Now))
	}
	return NewRegistry(oplog.Engine(), opts...)
}

// waitFor polls cond until it holds or the deadline passes.
func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatal("condition not met before deadline")
		}
		time.Sleep(5 * time.Millisecond)
	}
}

var _ replica.Doc = (*oplog.Doc)(nil)
