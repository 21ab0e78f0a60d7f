package oplog

import (
	"bytes"
	"testing"

	"github.com/yndnr/docmesh-go/internal/core/replica"
)

func drain(ch <-chan replica.Event) []replica.Event {
	var out []replica.Event
	for {
		select {
		case ev, ok := <-ch:
			if !ok {
				return out
			}
			out = append(out, ev)
		default:
			return out
		}
	}
}

func contentEqual(a, b [][]byte) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !bytes.Equal(a[i], b[i]) {
			return false
		}
	}
	return true
}

func TestApplyEmitsUpdateWithOriginalBytes(t *testing.T) {
	doc := New()
	ed := NewEditor(1)
	u := ed.Insert([]byte("hello"))

	if err := doc.Apply(u, "conn-1"); err != nil {
		t.Fatalf("Apply() error = %v", err)
	}

	events := drain(doc.Events())
	if len(events) != 1 {
		t.Fatalf("got %d events, want 1", len(events))
	}
	ev := events[0]
	if ev.Kind != replica.EventUpdate {
		t.Errorf("Kind = %v, want EventUpdate", ev.Kind)
	}
	if ev.Origin != "conn-1" {
		t.Errorf("Origin = %q, want conn-1", ev.Origin)
	}
	if !bytes.Equal(ev.Update, u) {
		t.Error("Update should be the received bytes unmodified")
	}
}

func TestApplyIsIdempotent(t *testing.T) {
	doc := New()
	u := NewEditor(1).Insert([]byte("x"))

	if err := doc.Apply(u, "a"); err != nil {
		t.Fatal(err)
	}
	drain(doc.Events())

	if err := doc.Apply(u, "b"); err != nil {
		t.Fatalf("second Apply() error = %v", err)
	}
	if events := drain(doc.Events()); len(events) != 0 {
		t.Errorf("re-applying a known update emitted %d events", len(events))
	}
	if got := doc.Content(); len(got) != 1 {
		t.Errorf("Content() has %d blocks, want 1", len(got))
	}
}

func TestConvergenceAcrossOrders(t *testing.T) {
	a, b := NewEditor(1), NewEditor(2)
	updates := [][]byte{
		a.Insert([]byte("a1")),
		b.Insert([]byte("b1")),
		a.Insert([]byte("a2")),
		b.Set(replica.TitleKey, "from b"),
		a.Set(replica.TitleKey, "from a"),
	}

	orders := [][]int{
		{0, 1, 2, 3, 4},
		{4, 3, 2, 1, 0},
		{2, 0, 4, 1, 3},
		{3, 4, 1, 2, 0, 0, 3}, // duplicates too
	}

	var want [][]byte
	var wantTitle string
	for i, order := range orders {
		doc := New()
		for _, idx := range order {
			if err := doc.Apply(updates[idx], ""); err != nil {
				t.Fatalf("order %d: Apply(%d) error = %v", i, idx, err)
			}
			drain(doc.Events())
		}
		title, _ := doc.Meta(replica.TitleKey)
		if i == 0 {
			want, wantTitle = doc.Content(), title
			continue
		}
		if !contentEqual(doc.Content(), want) {
			t.Errorf("order %d content diverged", i)
		}
		if title != wantTitle {
			t.Errorf("order %d title = %q, want %q", i, title, wantTitle)
		}
	}
}

func TestMetaLastWriterWins(t *testing.T) {
	doc := New()
	a, b := NewEditor(1), NewEditor(2)

	first := a.Set(replica.TitleKey, "Draft")
	if err := doc.Apply(first, "x"); err != nil {
		t.Fatal(err)
	}
	events := drain(doc.Events())
	if len(events) != 2 || events[1].Kind != replica.EventMeta || events[1].Value != "Draft" {
		t.Fatalf("events = %+v, want update then meta(Draft)", events)
	}

	// b has seen a's write, so its write must win.
	b.Observe(doc)
	second := b.Set(replica.TitleKey, "Final")
	if err := doc.Apply(second, "y"); err != nil {
		t.Fatal(err)
	}
	if title, _ := doc.Meta(replica.TitleKey); title != "Final" {
		t.Errorf("title = %q, want Final", title)
	}

	// A stale concurrent write from a loses and emits no meta event.
	stale := EncodeUpdate([]Op{{Client: 1, Seq: 99, Lamport: 1, Kind: OpMeta, Key: replica.TitleKey, Value: []byte("Old")}})
	if err := doc.Apply(stale, "z"); err != nil {
		t.Fatal(err)
	}
	drain(doc.Events())
	if title, _ := doc.Meta(replica.TitleKey); title != "Final" {
		t.Errorf("stale write overwrote title: %q", title)
	}
}

func TestDiffAgainstStateVector(t *testing.T) {
	server := New()
	client := New()
	a := NewEditor(1)

	u1 := a.Insert([]byte("one"))
	u2 := a.Insert([]byte("two"))
	for _, u := range [][]byte{u1, u2} {
		if err := server.Apply(u, ""); err != nil {
			t.Fatal(err)
		}
	}
	if err := client.Apply(u1, ""); err != nil {
		t.Fatal(err)
	}

	diff, err := server.Diff(client.StateVector())
	if err != nil {
		t.Fatalf("Diff() error = %v", err)
	}
	ops, err := DecodeUpdate(diff)
	if err != nil {
		t.Fatal(err)
	}
	if len(ops) != 1 || string(ops[0].Value) != "two" {
		t.Fatalf("diff ops = %+v, want only the missing op", ops)
	}

	if err := client.Apply(diff, ""); err != nil {
		t.Fatal(err)
	}
	if !contentEqual(client.Content(), server.Content()) {
		t.Error("client did not converge after applying diff")
	}

	full, err := server.Diff(nil)
	if err != nil {
		t.Fatal(err)
	}
	if ops, _ := DecodeUpdate(full); len(ops) != 2 {
		t.Errorf("Diff(nil) returned %d ops, want 2", len(ops))
	}
}

func TestOutOfOrderClock(t *testing.T) {
	doc := New()
	ops := []Op{
		{Client: 5, Seq: 1, Lamport: 1, Kind: OpContent, Value: []byte("1")},
		{Client: 5, Seq: 2, Lamport: 2, Kind: OpContent, Value: []byte("2")},
		{Client: 5, Seq: 3, Lamport: 3, Kind: OpContent, Value: []byte("3")},
	}
	for _, idx := range []int{2, 0} {
		if err := doc.Apply(EncodeUpdate(ops[idx:idx+1]), ""); err != nil {
			t.Fatal(err)
		}
	}
	sv, _ := decodeStateVector(doc.StateVector())
	if sv[5] != 1 {
		t.Errorf("clock with a gap = %d, want 1", sv[5])
	}

	if err := doc.Apply(EncodeUpdate(ops[1:2]), ""); err != nil {
		t.Fatal(err)
	}
	sv, _ = decodeStateVector(doc.StateVector())
	if sv[5] != 3 {
		t.Errorf("clock after filling gap = %d, want 3", sv[5])
	}
}

func TestApplyRejectsGarbage(t *testing.T) {
	doc := New()
	bad := [][]byte{
		nil,
		{0x05},
		{0x01, 0x01, 0x00, 0x01, 0x01},       // zero seq
		{0x01, 0x01, 0x01, 0x01, 0x09, 0, 0}, // unknown kind
		{0xFF, 0xFF, 0xFF, 0x0F},             // count larger than input
	}
	for i, u := range bad {
		if err := doc.Apply(u, ""); err == nil {
			t.Errorf("case %d: Apply() should fail", i)
		}
	}
	if events := drain(doc.Events()); len(events) != 0 {
		t.Errorf("failed merges emitted %d events", len(events))
	}
}

func TestCloseClosesEvents(t *testing.T) {
	doc := New()
	if err := doc.Apply(NewEditor(1).Insert([]byte("a")), ""); err != nil {
		t.Fatal(err)
	}
	if err := doc.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	if err := doc.Close(); err != nil {
		t.Fatalf("second Close() error = %v", err)
	}

	// Pending notifications are still delivered before the channel closes.
	events := drain(doc.Events())
	if len(events) != 1 {
		t.Errorf("got %d events after close, want 1", len(events))
	}
	if _, ok := <-doc.Events(); ok {
		t.Error("Events() should be closed")
	}

	if err := doc.Apply(NewEditor(2).Insert([]byte("b")), ""); err != ErrClosed {
		t.Errorf("Apply() after Close = %v, want ErrClosed", err)
	}
}

func TestEngineRegistered(t *testing.T) {
	e, err := replica.Lookup(Name)
	if err != nil {
		t.Fatalf("Lookup(%q) error = %v", Name, err)
	}
	doc, err := e.New()
	if err != nil {
		t.Fatal(err)
	}
	defer doc.Close()
	if _, ok := doc.(*Doc); !ok {
		t.Errorf("engine returned %T, want *Doc", doc)
	}
}
