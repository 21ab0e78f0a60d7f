package protocol

import (
	"encoding/binary"
	"errors"
	"fmt"
)

var (
	errTruncated = errors.New("truncated input")
	errOverflow  = errors.New("varint overflows 64 bits")
)

func readUvarint(b []byte) (uint64, int, error) {
	v, n := binary.Uvarint(b)
	switch {
	case n == 0:
		return 0, 0, errTruncated
	case n < 0:
		return 0, 0, errOverflow
	}
	return v, n, nil
}

func readBytes(b []byte) ([]byte, int, error) {
	l, n, err := readUvarint(b)
	if err != nil {
		return nil, 0, err
	}
	if l > MaxPayloadLen {
		return nil, 0, fmt.Errorf("payload length %d exceeds limit %d", l, MaxPayloadLen)
	}
	end := n + int(l)
	if end > len(b) {
		return nil, 0, fmt.Errorf("%w: need %d bytes, have %d", errTruncated, l, len(b)-n)
	}
	return b[n:end], end, nil
}
