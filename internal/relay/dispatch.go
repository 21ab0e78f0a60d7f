package relay

import (
	"errors"

	"github.com/yndnr/docmesh-go/internal/core/domain"
	"github.com/yndnr/docmesh-go/internal/protocol"
)

// handle dispatches one inbound message. Failures are contained to the
// message: they are logged, counted and dropped.
func (c *Conn) handle(data []byte) {
	f, err := protocol.Decode(data)
	if err != nil {
		c.metrics.RecordFrameDropped("malformed")
		c.logger.Warn("dropping malformed frame", "error", err, "size", len(data))
		return
	}
	c.metrics.RecordFrame(f.Channel.String())

	switch f.Channel {
	case protocol.ChannelSync:
		c.handleSync(f)
	case protocol.ChannelAwareness:
		n := c.session.Broadcast(data, c.id)
		c.metrics.AddBroadcast(protocol.ChannelAwareness.String(), n)
	}
}

func (c *Conn) handleSync(f protocol.Frame) {
	switch f.Type {
	case protocol.SyncStep1:
		diff, err := c.session.Diff(f.Payload)
		if err != nil {
			c.metrics.RecordFrameDropped("merge")
			c.logger.Warn("dropping sync step1", "error", err)
			return
		}
		if !c.Send(protocol.EncodeSync(protocol.SyncStep2, diff)) {
			c.metrics.IncConnectionKicked()
			c.logger.Warn("closing slow connection")
			c.session.Detach(c.id)
			c.Close()
		}
	case protocol.SyncStep2, protocol.SyncUpdate:
		if err := c.session.Apply(f.Payload, c.id); err != nil {
			if errors.Is(err, domain.ErrDocumentClosed) {
				return
			}
			c.metrics.RecordFrameDropped("merge")
			c.logger.Warn("dropping update", "type", f.Type.String(), "error", err)
		}
	}
}
