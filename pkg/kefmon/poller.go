// Package kefmon is the glue between a speaker client and a host
// automation platform: it polls a speaker on a fixed cadence, reduces
// each cycle to a state snapshot, and tracks configured speakers so
// the same endpoint is not set up twice.
package kefmon

import (
	"context"
	"log/slog"
	"time"

	"kefctl/pkg/kef"
)

// DefaultInterval is the polling cadence used when none is configured.
const DefaultInterval = 15 * time.Second

// State is one observed snapshot of a speaker. It is rebuilt from
// scratch on every poll; an unreachable speaker yields the zero value.
// Source carries the last active input even when On is false.
type State struct {
	Online bool
	On     bool
	Muted  bool
	Volume float64
	Source kef.Source
}

// Poller queries one speaker on a fixed interval and hands each
// snapshot to the update callback. Read failures degrade to an
// offline snapshot instead of surfacing as errors; a command that must
// report failure goes through the Speaker directly.
type Poller struct {
	speaker  *kef.Speaker
	interval time.Duration
	logger   *slog.Logger
	onUpdate func(State)
}

// NewPoller creates a poller for the given speaker. An interval of
// zero or less selects DefaultInterval. The logger may be nil and the
// callback may be nil for callers that only use Poll directly.
func NewPoller(speaker *kef.Speaker, interval time.Duration, logger *slog.Logger, onUpdate func(State)) *Poller {
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Poller{
		speaker:  speaker,
		interval: interval,
		logger:   logger,
		onUpdate: onUpdate,
	}
}

// Poll performs one polling cycle: a reachability probe, then the
// mute, volume and source/power reads. Any failure mid-cycle reports
// the speaker as offline for this cycle.
func (p *Poller) Poll(ctx context.Context) State {
	if !p.speaker.IsOnline(ctx) {
		return State{}
	}

	muted, err := p.speaker.IsMuted(ctx)
	if err != nil {
		return p.degraded(err)
	}
	volume, err := p.speaker.GetVolume(ctx)
	if err != nil {
		return p.degraded(err)
	}
	source, on, err := p.speaker.GetSourceAndState(ctx)
	if err != nil {
		return p.degraded(err)
	}

	return State{
		Online: true,
		On:     on,
		Muted:  muted,
		Volume: volume,
		Source: source,
	}
}

func (p *Poller) degraded(err error) State {
	if p.logger != nil {
		p.logger.Debug("poll failed", "addr", p.speaker.Addr(), "error", err)
	}
	return State{}
}

// Run polls until ctx is canceled. The first cycle runs immediately.
func (p *Poller) Run(ctx context.Context) {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		state := p.Poll(ctx)
		if p.onUpdate != nil {
			p.onUpdate(state)
		}

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}
