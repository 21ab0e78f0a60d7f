package benchmark

import (
	"fmt"
	"runtime"
	"testing"

	"github.com/yndnr/docmesh-go/internal/core/domain"
	"github.com/yndnr/docmesh-go/internal/core/replica"
	"github.com/yndnr/docmesh-go/internal/core/replica/oplog"
	"github.com/yndnr/docmesh-go/internal/core/service"
	"github.com/yndnr/docmesh-go/internal/telemetry/logger"
)

// DocumentCounts are the registry sizes used by listing benchmarks.
var DocumentCounts = []int{100, 1000, 10000}

// PeerCounts are the attachment counts used by fan-out benchmarks.
var PeerCounts = []int{1, 10, 100}

// PayloadSizes are the update sizes used by codec benchmarks.
var PayloadSizes = []int{64, 4 << 10, 256 << 10}

// sinkPeer accepts and discards every frame.
type sinkPeer struct{ id string }

func (p *sinkPeer) ID() string { return p.id }
func (p *sinkPeer) Send([]byte) bool { return true }
func (p *sinkPeer) Close() {}

func newRegistry(b *testing.B) *service.Registry {
	b.Helper()
	r := service.NewRegistry(oplog.Engine(), service.WithLogger(logger.Nop()))
	b.Cleanup(r.Close)
	return r
}

// prefillRegistry creates count public documents.
func prefillRegistry(b *testing.B, r *service.Registry, count int) []string {
	b.Helper()
	ids := make([]string, count)
	for i := range ids {
		ids[i] = fmt.Sprintf("doc-%06d", i)
		if _, err := r.Create(ids[i], domain.PublicAccess()); err != nil {
			b.Fatalf("Create(%s) error = %v", ids[i], err)
		}
	}
	return ids
}

// drainEvents consumes engine notifications so Apply never blocks on a
// full channel.
func drainEvents(doc replica.Doc) {
	go func() {
		for range doc.Events() {
		}
	}()
}

// reportMemory reports heap usage after a forced collection.
func reportMemory(b *testing.B, prefix string) {
	var m runtime.MemStats
	runtime.GC()
	runtime.ReadMemStats(&m)
	b.ReportMetric(float64(m.HeapAlloc)/1024/1024, prefix+"_heap_MB")
}
