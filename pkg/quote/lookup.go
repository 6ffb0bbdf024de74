package quote

import (
	"context"
	"errors"

	"github.com/goliatone/go-quoteform/pkg/postal"
)

// postalChanged runs with c.mu held. Every edit supersedes in-flight lookups,
// so only the result for the latest edit can merge.
func (c *Controller) postalChanged(code string) {
	c.supersedeLookups()
	if c.lookup == nil || !postal.Valid(code) {
		return
	}

	seq := c.seq
	var (
		ctx    context.Context
		cancel context.CancelFunc
	)
	if c.lookupTimeout > 0 {
		ctx, cancel = context.WithTimeout(c.ctx, c.lookupTimeout)
	} else {
		ctx, cancel = context.WithCancel(c.ctx)
	}
	pending := &pendingLookup{
		code:   code,
		done:   make(chan struct{}),
		cancel: cancel,
	}
	c.inflight[seq] = pending
	go c.runLookup(ctx, seq, pending)
}

// supersedeLookups runs with c.mu held.
func (c *Controller) supersedeLookups() {
	c.seq++
	for _, pending := range c.inflight {
		pending.cancel()
	}
}

func (c *Controller) runLookup(ctx context.Context, seq uint64, pending *pendingLookup) {
	defer close(pending.done)
	defer pending.cancel()

	addr, err := c.lookup.Lookup(ctx, pending.code)

	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.inflight, seq)

	switch {
	case seq != c.seq:
		c.logger.Debug("quote: discarded superseded postal lookup", "postal_code", pending.code)
	case errors.Is(err, postal.ErrNotFound):
		c.logger.Info("quote: postal code not found", "postal_code", pending.code)
	case err != nil:
		c.logger.Warn("quote: postal lookup failed", "postal_code", pending.code, "error", err)
	case c.state.Get(FieldPostalCode) != pending.code:
		c.logger.Debug("quote: discarded stale postal lookup", "postal_code", pending.code)
	default:
		c.mergeAddress(addr)
	}
}

// mergeAddress runs with c.mu held.
func (c *Controller) mergeAddress(addr postal.Address) {
	merged := []struct {
		field Field
		value string
	}{
		{FieldStreet, addr.Street},
		{FieldNeighborhood, addr.Neighborhood},
		{FieldCity, addr.City},
		{FieldState, addr.State},
	}
	for _, m := range merged {
		c.state.Set(m.field, m.value)
		c.repair(m.field)
	}
	c.logger.Debug("quote: merged postal lookup", "postal_code", addr.PostalCode, "city", addr.City)
}

// Await blocks until no lookup is in flight or ctx is done.
func (c *Controller) Await(ctx context.Context) error {
	for {
		c.mu.Lock()
		waits := make([]chan struct{}, 0, len(c.inflight))
		for _, pending := range c.inflight {
			waits = append(waits, pending.done)
		}
		c.mu.Unlock()

		if len(waits) == 0 {
			return nil
		}
		for _, done := range waits {
			select {
			case <-done:
			case <-ctx.Done():
				return ctx.Err()
			}
		}
	}
}

// Pending reports whether a postal lookup is in flight.
func (c *Controller) Pending() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.inflight) > 0
}
