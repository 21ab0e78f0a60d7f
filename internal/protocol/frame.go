package protocol

import (
	"encoding/binary"
	"fmt"

	"github.com/yndnr/docmesh-go/internal/core/domain"
)

// Channel is the first discriminator of a frame.
type Channel uint64

const (
	// ChannelSync carries state vectors and document updates.
	ChannelSync Channel = 0

	// ChannelAwareness carries ephemeral presence state.
	ChannelAwareness Channel = 1
)

// String returns the metric/log label of the channel.
func (c Channel) String() string {
	switch c {
	case ChannelSync:
		return "sync"
	case ChannelAwareness:
		return "awareness"
	default:
		return "unknown"
	}
}

// SyncType is the second discriminator of a sync frame.
type SyncType uint64

const (
	// SyncStep1 carries the sender's state vector and asks for what it lacks.
	SyncStep1 SyncType = 0

	// SyncStep2 carries a diff answering a SyncStep1.
	SyncStep2 SyncType = 1

	// SyncUpdate carries an incremental update.
	SyncUpdate SyncType = 2
)

// String returns the log label of the sync type.
func (t SyncType) String() string {
	switch t {
	case SyncStep1:
		return "step1"
	case SyncStep2:
		return "step2"
	case SyncUpdate:
		return "update"
	default:
		return "unknown"
	}
}

// MaxPayloadLen bounds the declared length of a payload (64MB).
// Transports enforce a tighter per-message limit before decoding.
const MaxPayloadLen = 64 << 20

// Frame is a decoded protocol message.
type Frame struct {
	Channel Channel
	Type    SyncType // meaningful only on ChannelSync
	Payload []byte
}

// Decode parses a single frame from b.
//
// The returned payload aliases b. The frame must span all of b: bytes
// after the payload, like any other defect, yield an error matching
// domain.ErrMalformedFrame. Relayed frames are therefore exactly what
// Encode would produce.
func Decode(b []byte) (Frame, error) {
	var f Frame

	ch, n, err := readUvarint(b)
	if err != nil {
		return f, malformed("channel", err)
	}
	b = b[n:]
	f.Channel = Channel(ch)

	switch f.Channel {
	case ChannelSync:
		t, n, err := readUvarint(b)
		if err != nil {
			return f, malformed("sync type", err)
		}
		b = b[n:]
		f.Type = SyncType(t)
		if f.Type > SyncUpdate {
			return f, malformed("sync type", fmt.Errorf("unknown type %d", t))
		}
	case ChannelAwareness:
	default:
		return f, malformed("channel", fmt.Errorf("unknown channel %d", ch))
	}

	payload, n, err := readBytes(b)
	if err != nil {
		return f, malformed("payload", err)
	}
	if extra := len(b) - n; extra > 0 {
		return f, malformed("payload", fmt.Errorf("%d trailing bytes", extra))
	}
	f.Payload = payload
	return f, nil
}

// Encode serializes f into a new buffer.
func Encode(f Frame) []byte {
	out := make([]byte, 0, 3*binary.MaxVarintLen64+len(f.Payload))
	out = binary.AppendUvarint(out, uint64(f.Channel))
	if f.Channel == ChannelSync {
		out = binary.AppendUvarint(out, uint64(f.Type))
	}
	out = binary.AppendUvarint(out, uint64(len(f.Payload)))
	return append(out, f.Payload...)
}

// EncodeSync builds a sync frame of type t.
func EncodeSync(t SyncType, payload []byte) []byte {
	return Encode(Frame{Channel: ChannelSync, Type: t, Payload: payload})
}

// EncodeAwareness builds an awareness frame.
func EncodeAwareness(payload []byte) []byte {
	return Encode(Frame{Channel: ChannelAwareness, Payload: payload})
}

func malformed(field string, cause error) error {
	return domain.ErrMalformedFrame.WithDetail(field).Wrap(cause)
}
