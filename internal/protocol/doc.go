// Package protocol implements the binary frame codec spoken over the
// synchronizing transport.
//
// Every message is one frame. The first unsigned varint selects the
// channel; sync frames carry a second varint selecting the step and a
// length-prefixed payload, awareness frames carry a length-prefixed
// payload directly:
//
//	frame      := varuint(channel) body
//	channel    := 0 (sync) | 1 (awareness)
//	sync body  := varuint(type) varbytes(payload)    type: 0 step1, 1 step2, 2 update
//	awareness  := varbytes(payload)
//	varbytes   := varuint(len) len*byte
//
// Varints are little-endian base-128 (LEB128), which is the encoding
// used by encoding/binary's Uvarint. The layout is wire compatible with
// the y-protocols sync and awareness messages.
package protocol
