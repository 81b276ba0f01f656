// Copyright © 2024 gg20-driver Authors
//
// This file is part of gg20-driver. The full gg20-driver copyright notice,
// including terms governing use, modification, and redistribution, is
// contained in the file LICENSE at the root of the source code
// distribution tree.

package driver

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"

	"github.com/opentss/gg20-driver/internal/sm"
	"github.com/opentss/gg20-driver/internal/transport"
)

// scriptedKeygenSM is a fake CryptoSM whose queue mimics tss-lib's real
// keygen layout: one leading broadcast, then round 2's p2p shares followed
// by round 2's own broadcast (library order), then round 3's p2p shares.
// The real plan calls Proceed exactly twice -- once to start, once after
// round 3's messages are all collected -- so the second call here just
// marks the machine finished.
type scriptedKeygenSM struct {
	me       uint16
	group    []uint16
	queue    []sm.RoundMsg
	proceeds int
	done     bool
}

func newScriptedKeygenSM(me uint16, group []uint16) *scriptedKeygenSM {
	return &scriptedKeygenSM{me: me, group: group}
}

func (s *scriptedKeygenSM) peers() []uint16 {
	out := make([]uint16, 0, len(s.group)-1)
	for _, r := range s.group {
		if r != s.me {
			out = append(out, r)
		}
	}
	return out
}

func (s *scriptedKeygenSM) Proceed() error {
	s.proceeds++
	if s.proceeds > 1 {
		s.done = true
		return nil
	}
	s.queue = append(s.queue, sm.RoundMsg{Sender: s.me, Body: []byte("r1-bcast")})
	for _, p := range s.peers() {
		p := p
		s.queue = append(s.queue, sm.RoundMsg{Sender: s.me, Receiver: &p, Body: []byte("r2-p2p")})
	}
	s.queue = append(s.queue, sm.RoundMsg{Sender: s.me, Body: []byte("r2-bcast")})
	for _, p := range s.peers() {
		p := p
		s.queue = append(s.queue, sm.RoundMsg{Sender: s.me, Receiver: &p, Body: []byte("r3-p2p")})
	}
	return nil
}

func (s *scriptedKeygenSM) MessageQueue() []sm.RoundMsg { return s.queue }

func (s *scriptedKeygenSM) HandleIncoming(sm.RoundMsg) error { return nil }

func (s *scriptedKeygenSM) PickOutput() (sm.LocalKey, bool) {
	if !s.done {
		return sm.LocalKey{}, false
	}
	return sm.LocalKey{Rank: s.me, GroupPublicKey: []byte("pub")}, true
}

func TestRunKeygenThreeParties(t *testing.T) {
	net := transport.NewNetwork()
	group := []uint16{1, 2, 3}

	var mu sync.Mutex
	results := map[uint16]sm.LocalKey{}

	g, ctx := errgroup.WithContext(context.Background())
	for _, me := range group {
		me := me
		g.Go(func() error {
			d := &Driver{Transport: net.For(me), Me: me, Group: group, Tag: 1, Task: "keygen"}
			machine := newScriptedKeygenSM(me, group)
			key, err := d.RunKeygen(ctx, machine)
			if err != nil {
				return err
			}
			mu.Lock()
			results[me] = key
			mu.Unlock()
			return nil
		})
	}
	require.NoError(t, g.Wait())
	assert.Len(t, results, 3)
	for rank, key := range results {
		assert.Equal(t, rank, key.Rank)
	}
}

func TestBroadcastThenCollectRejectsWrongSender(t *testing.T) {
	net := transport.NewNetwork()
	d := &Driver{Transport: net.For(1), Me: 1, Group: []uint16{1, 2}, Tag: 1, Task: "keygen"}
	other := uint16(2)
	machine := &scriptedKeygenSM{me: 1, group: []uint16{1, 2}, queue: []sm.RoundMsg{{Sender: 2, Receiver: &other, Body: []byte("x")}}}

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()
	err := d.BroadcastThenCollect(ctx, machine, 0)
	assert.Error(t, err)
}

func TestBroadcastThenCollectRejectsOutOfRangeIndex(t *testing.T) {
	net := transport.NewNetwork()
	d := &Driver{Transport: net.For(1), Me: 1, Group: []uint16{1, 2}, Tag: 1, Task: "keygen"}
	machine := &scriptedKeygenSM{me: 1, group: []uint16{1, 2}}

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()
	err := d.BroadcastThenCollect(ctx, machine, 0)
	assert.Error(t, err)
}

func TestPeersExcludesSelfAndSorts(t *testing.T) {
	d := &Driver{Me: 2, Group: []uint16{3, 1, 2}}
	assert.Equal(t, []uint16{1, 3}, d.Peers())
}
