package oplog

import (
	"encoding/binary"
	"errors"
	"fmt"
	"sort"
)

var errTruncated = errors.New("oplog: truncated input")

// OpKind distinguishes content operations from metadata writes.
type OpKind uint8

const (
	// OpContent appends an opaque content block.
	OpContent OpKind = 1

	// OpMeta writes a last-writer-wins metadata register.
	OpMeta OpKind = 2
)

// Op is a single operation. (Client, Seq) identifies it; Lamport orders
// it against concurrent operations from other clients.
type Op struct {
	Client  uint64
	Seq     uint64
	Lamport uint64
	Kind    OpKind
	Key     string
	Value   []byte
}

type opID struct {
	client uint64
	seq    uint64
}

func (o Op) id() opID { return opID{o.Client, o.Seq} }

// after reports whether o wins a last-writer-wins race against other.
func (o Op) after(other Op) bool {
	if o.Lamport != other.Lamport {
		return o.Lamport > other.Lamport
	}
	return o.Client > other.Client
}

// EncodeUpdate serializes ops as
// varuint(count) { varuint(client) varuint(seq) varuint(lamport) kind varbytes(key) varbytes(value) }.
func EncodeUpdate(ops []Op) []byte {
	out := binary.AppendUvarint(nil, uint64(len(ops)))
	for _, o := range ops {
		out = binary.AppendUvarint(out, o.Client)
		out = binary.AppendUvarint(out, o.Seq)
		out = binary.AppendUvarint(out, o.Lamport)
		out = append(out, byte(o.Kind))
		out = appendBytes(out, []byte(o.Key))
		out = appendBytes(out, o.Value)
	}
	return out
}

// DecodeUpdate parses an update produced by EncodeUpdate.
func DecodeUpdate(b []byte) ([]Op, error) {
	r := reader{b: b}
	n, err := r.uvarint()
	if err != nil {
		return nil, err
	}
	// Each op needs at least 6 bytes; reject counts the input cannot hold.
	if n > uint64(len(b)) {
		return nil, fmt.Errorf("oplog: op count %d exceeds input size", n)
	}
	ops := make([]Op, 0, n)
	for i := uint64(0); i < n; i++ {
		var o Op
		if o.Client, err = r.uvarint(); err != nil {
			return nil, err
		}
		if o.Seq, err = r.uvarint(); err != nil {
			return nil, err
		}
		if o.Seq == 0 {
			return nil, fmt.Errorf("oplog: op %d has zero sequence", i)
		}
		if o.Lamport, err = r.uvarint(); err != nil {
			return nil, err
		}
		k, err := r.byte()
		if err != nil {
			return nil, err
		}
		o.Kind = OpKind(k)
		if o.Kind != OpContent && o.Kind != OpMeta {
			return nil, fmt.Errorf("oplog: op %d has unknown kind %d", i, k)
		}
		key, err := r.bytes()
		if err != nil {
			return nil, err
		}
		o.Key = string(key)
		val, err := r.bytes()
		if err != nil {
			return nil, err
		}
		o.Value = append([]byte(nil), val...)
		ops = append(ops, o)
	}
	return ops, nil
}

// encodeStateVector serializes varuint(count) { varuint(client) varuint(seq) }
// with clients in ascending order.
func encodeStateVector(clocks map[uint64]uint64) []byte {
	clients := make([]uint64, 0, len(clocks))
	for c := range clocks {
		clients = append(clients, c)
	}
	sort.Slice(clients, func(i, j int) bool { return clients[i] < clients[j] })

	out := binary.AppendUvarint(nil, uint64(len(clients)))
	for _, c := range clients {
		out = binary.AppendUvarint(out, c)
		out = binary.AppendUvarint(out, clocks[c])
	}
	return out
}

func decodeStateVector(b []byte) (map[uint64]uint64, error) {
	sv := make(map[uint64]uint64)
	if len(b) == 0 {
		return sv, nil
	}
	r := reader{b: b}
	n, err := r.uvarint()
	if err != nil {
		return nil, err
	}
	if n > uint64(len(b)) {
		return nil, fmt.Errorf("oplog: state vector count %d exceeds input size", n)
	}
	for i := uint64(0); i < n; i++ {
		c, err := r.uvarint()
		if err != nil {
			return nil, err
		}
		s, err := r.uvarint()
		if err != nil {
			return nil, err
		}
		sv[c] = s
	}
	return sv, nil
}

func appendBytes(out, b []byte) []byte {
	out = binary.AppendUvarint(out, uint64(len(b)))
	return append(out, b...)
}

type reader struct {
	b   []byte
	off int
}

func (r *reader) uvarint() (uint64, error) {
	v, n := binary.Uvarint(r.b[r.off:])
	if n <= 0 {
		return 0, errTruncated
	}
	r.off += n
	return v, nil
}

func (r *reader) byte() (byte, error) {
	if r.off >= len(r.b) {
		return 0, errTruncated
	}
	c := r.b[r.off]
	r.off++
	return c, nil
}

func (r *reader) bytes() ([]byte, error) {
	l, err := r.uvarint()
	if err != nil {
		return nil, err
	}
	if l > uint64(len(r.b)-r.off) {
		return nil, errTruncated
	}
	out := r.b[r.off : r.off+int(l)]
	r.off += int(l)
	return out, nil
}
