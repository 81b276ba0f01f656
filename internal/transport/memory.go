// Copyright © 2024 gg20-driver Authors
//
// This file is part of gg20-driver. The full gg20-driver copyright notice,
// including terms governing use, modification, and redistribution, is
// contained in the file LICENSE at the root of the source code
// distribution tree.

package transport

import (
	"context"
	"fmt"
	"sync"
)

// Network is an in-process, channel-backed Transport shared by every
// party rank in a simulated group. It is the idiomatic Go rendition of
// the teacher's mpc/common.go SharedPartyUpdater/ShareData file-drop
// protocol: there, a sender writes a file under a (from,to,tag) path and
// the receiver polls for it; here the same per-pair isolation is a
// buffered channel, which gives FIFO-per-pair delivery for free from Go's
// channel semantics instead of a polling loop.
type Network struct {
	mu    sync.Mutex
	pipes map[pipeKey]chan []byte
}

type pipeKey struct {
	from, to uint16
	tag      uint32
}

// NewNetwork creates an empty shared network. Pipes are created lazily on
// first use so callers never need to pre-register the party set.
func NewNetwork() *Network {
	return &Network{pipes: make(map[pipeKey]chan []byte)}
}

func (n *Network) pipe(from, to uint16, tag uint32) chan []byte {
	n.mu.Lock()
	defer n.mu.Unlock()
	key := pipeKey{from: from, to: to, tag: tag}
	ch, ok := n.pipes[key]
	if !ok {
		ch = make(chan []byte, 1)
		n.pipes[key] = ch
	}
	return ch
}

// For returns the Transport view of this network as seen by party rank
// `me`: sends on (me -> peer, tag), receives on (peer -> me, tag).
func (n *Network) For(me uint16) Transport {
	return &partyView{net: n, me: me}
}

type partyView struct {
	net *Network
	me  uint16
}

func (v *partyView) Send(ctx context.Context, peer uint16, tag uint32, payload []byte) error {
	if peer == v.me {
		return fmt.Errorf("party %d tried to send to itself", v.me)
	}
	ch := v.net.pipe(v.me, peer, tag)
	select {
	case ch <- payload:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (v *partyView) Recv(ctx context.Context, peer uint16, tag uint32) ([]byte, error) {
	ch := v.net.pipe(peer, v.me, tag)
	select {
	case payload := <-ch:
		return payload, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}
