package signal

import (
	"context"

	"golang.org/x/time/rate"
)

// signalContext is the per-connection state shared by all handlers on
// one peer's channel.
type signalContext struct {
	peerID   string
	roomName string
	joined   bool
	reqCtx   context.Context
	rlimiter *rate.Limiter
}

func (c *signalContext) allow() bool {
	if c.rlimiter == nil {
		return true
	}
	return c.rlimiter.Allow()
}
