package protocol

import (
	"bytes"
	"errors"
	"testing"

	"github.com/yndnr/docmesh-go/internal/core/domain"
)

func TestEncodeSyncLayout(t *testing.T) {
	tests := []struct {
		name    string
		typ     SyncType
		payload []byte
		want    []byte
	}{
		{"step1 empty", SyncStep1, nil, []byte{0, 0, 0}},
		{"step2", SyncStep2, []byte{0xAA}, []byte{0, 1, 1, 0xAA}},
		{"update", SyncUpdate, []byte{1, 2, 3}, []byte{0, 2, 3, 1, 2, 3}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := EncodeSync(tt.typ, tt.payload); !bytes.Equal(got, tt.want) {
				t.Errorf("EncodeSync() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestEncodeAwarenessLayout(t *testing.T) {
	got := EncodeAwareness([]byte("hi"))
	want := []byte{1, 2, 'h', 'i'}
	if !bytes.Equal(got, want) {
		t.Errorf("EncodeAwareness() = %v, want %v", got, want)
	}
}

func TestEncodeLongPayloadUsesMultiByteLength(t *testing.T) {
	payload := bytes.Repeat([]byte{7}, 300)
	got := EncodeSync(SyncUpdate, payload)

	// 300 = 0b1_0010_1100 -> 0xAC 0x02
	if got[2] != 0xAC || got[3] != 0x02 {
		t.Fatalf("length prefix = %x %x, want ac 02", got[2], got[3])
	}
	if len(got) != 4+300 {
		t.Errorf("len = %d, want %d", len(got), 304)
	}
}

func TestDecode(t *testing.T) {
	tests := []struct {
		name  string
		input []byte
		want  Frame
	}{
		{
			name:  "sync step1",
			input: []byte{0, 0, 2, 9, 9},
			want:  Frame{Channel: ChannelSync, Type: SyncStep1, Payload: []byte{9, 9}},
		},
		{
			name:  "sync update",
			input: []byte{0, 2, 1, 5},
			want:  Frame{Channel: ChannelSync, Type: SyncUpdate, Payload: []byte{5}},
		},
		{
			name:  "awareness",
			input: []byte{1, 3, 'a', 'b', 'c'},
			want:  Frame{Channel: ChannelAwareness, Payload: []byte("abc")},
		},
		{
			name:  "empty payload",
			input: []byte{1, 0},
			want:  Frame{Channel: ChannelAwareness, Payload: []byte{}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Decode(tt.input)
			if err != nil {
				t.Fatalf("Decode() error = %v", err)
			}
			if got.Channel != tt.want.Channel || got.Type != tt.want.Type {
				t.Errorf("Decode() = {%v %v}, want {%v %v}", got.Channel, got.Type, tt.want.Channel, tt.want.Type)
			}
			if !bytes.Equal(got.Payload, tt.want.Payload) {
				t.Errorf("Payload = %v, want %v", got.Payload, tt.want.Payload)
			}
		})
	}
}

func TestDecodeMalformed(t *testing.T) {
	tests := []struct {
		name  string
		input []byte
	}{
		{"empty", nil},
		{"unknown channel", []byte{2, 0}},
		{"sync missing type", []byte{0}},
		{"unknown sync type", []byte{0, 3, 0}},
		{"missing length", []byte{0, 2}},
		{"truncated payload", []byte{0, 2, 5, 1, 2}},
		{"truncated awareness", []byte{1, 4, 'a'}},
		{"trailing bytes after sync", []byte{0, 1, 1, 4, 0xFF, 0xFF}},
		{"trailing bytes after awareness", []byte{1, 1, 'x', 0xFF, 0xFF}},
		{"unterminated varint", []byte{0x80}},
		{"overflow varint", bytes.Repeat([]byte{0xFF}, 11)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode(tt.input)
			if err == nil {
				t.Fatal("Decode() should fail")
			}
			if !errors.Is(err, domain.ErrMalformedFrame) {
				t.Errorf("Decode() error = %v, want ErrMalformedFrame", err)
			}
		})
	}
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	frames := []Frame{
		{Channel: ChannelSync, Type: SyncStep1, Payload: []byte{0}},
		{Channel: ChannelSync, Type: SyncStep2, Payload: bytes.Repeat([]byte{1}, 1000)},
		{Channel: ChannelSync, Type: SyncUpdate, Payload: []byte("U1")},
		{Channel: ChannelAwareness, Payload: []byte(`{"user":"ana"}`)},
	}

	for _, f := range frames {
		got, err := Decode(Encode(f))
		if err != nil {
			t.Fatalf("Decode(Encode(%v/%v)) error = %v", f.Channel, f.Type, err)
		}
		if got.Channel != f.Channel || got.Type != f.Type || !bytes.Equal(got.Payload, f.Payload) {
			t.Errorf("round trip mismatch for %v/%v", f.Channel, f.Type)
		}
	}
}

func TestChannelAndTypeStrings(t *testing.T) {
	if ChannelSync.String() != "sync" || ChannelAwareness.String() != "awareness" || Channel(9).String() != "unknown" {
		t.Error("unexpected Channel.String() output")
	}
	if SyncStep1.String() != "step1" || SyncStep2.String() != "step2" || SyncUpdate.String() != "update" || SyncType(9).String() != "unknown" {
		t.Error("unexpected SyncType.String() output")
	}
}
