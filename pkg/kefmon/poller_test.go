package kefmon

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kefctl/pkg/kef"
	"kefctl/pkg/kef/keftest"
)

func newTestSpeaker(t *testing.T) (*kef.Speaker, *keftest.Server) {
	t.Helper()

	srv := keftest.NewServer(t)
	s, err := kef.NewSpeaker(srv.Host(),
		kef.WithPort(srv.Port()),
		kef.WithConnectTimeout(time.Second),
		kef.WithRequestTimeout(time.Second),
	)
	require.NoError(t, err)
	return s, srv
}

func TestPoll_OnlineSnapshot(t *testing.T) {
	s, srv := newTestSpeaker(t)
	srv.SetVolumeRegister(35)
	srv.SetSourceRegister(27) // Opt, on

	p := NewPoller(s, 0, nil, nil)
	state := p.Poll(context.Background())

	assert.True(t, state.Online)
	assert.True(t, state.On)
	assert.False(t, state.Muted)
	assert.InDelta(t, 0.35, state.Volume, 1e-9)
	assert.Equal(t, kef.SourceOpt, state.Source)
}

func TestPoll_StandbyKeepsLastSource(t *testing.T) {
	s, srv := newTestSpeaker(t)
	srv.SetSourceRegister(26 | 0x80) // Aux, standby

	p := NewPoller(s, 0, nil, nil)
	state := p.Poll(context.Background())

	assert.True(t, state.Online)
	assert.False(t, state.On)
	assert.Equal(t, kef.SourceAux, state.Source)
}

func TestPoll_MutedSnapshot(t *testing.T) {
	s, srv := newTestSpeaker(t)
	srv.SetVolumeRegister(40 | 0x80)

	p := NewPoller(s, 0, nil, nil)
	state := p.Poll(context.Background())

	assert.True(t, state.Online)
	assert.True(t, state.Muted)
	assert.InDelta(t, 0.40, state.Volume, 1e-9)
}

func TestPoll_UnreachableIsOffline(t *testing.T) {
	s, srv := newTestSpeaker(t)
	srv.Close()

	p := NewPoller(s, 0, nil, nil)
	state := p.Poll(context.Background())

	assert.Equal(t, State{}, state)
}

func TestPoll_MidCycleFailureDegrades(t *testing.T) {
	// A device that accepts connections but stops answering must not
	// surface an error, only an offline snapshot.
	srv := keftest.NewServer(t)
	srv.SetSilent(true)

	s, err := kef.NewSpeaker(srv.Host(),
		kef.WithPort(srv.Port()),
		kef.WithRequestTimeout(100*time.Millisecond),
	)
	require.NoError(t, err)

	p := NewPoller(s, 0, nil, nil)
	state := p.Poll(context.Background())

	assert.Equal(t, State{}, state)
}

func TestRun_DeliversSnapshotsUntilCanceled(t *testing.T) {
	s, srv := newTestSpeaker(t)
	srv.SetSourceRegister(18)

	states := make(chan State, 8)
	p := NewPoller(s, 20*time.Millisecond, nil, func(st State) {
		select {
		case states <- st:
		default:
		}
	})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		p.Run(ctx)
		close(done)
	}()

	select {
	case st := <-states:
		assert.True(t, st.Online)
	case <-time.After(2 * time.Second):
		t.Fatal("no snapshot delivered")
	}

	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not stop on cancel")
	}
}

func TestRegistry_RejectsDuplicates(t *testing.T) {
	r := NewRegistry()

	a, err := kef.NewSpeaker("192.168.1.40")
	require.NoError(t, err)
	b, err := kef.NewSpeaker("192.168.1.40")
	require.NoError(t, err)
	c, err := kef.NewSpeaker("192.168.1.41")
	require.NoError(t, err)

	assert.True(t, r.Add(a))
	assert.False(t, r.Add(b), "same host:port must be rejected")
	assert.True(t, r.Add(c))

	got, ok := r.Get("192.168.1.40:50001")
	require.True(t, ok)
	assert.Same(t, a, got)

	assert.Equal(t, []string{"192.168.1.40:50001", "192.168.1.41:50001"}, r.Addrs())

	r.Remove("192.168.1.40:50001")
	_, ok = r.Get("192.168.1.40:50001")
	assert.False(t, ok)
}
