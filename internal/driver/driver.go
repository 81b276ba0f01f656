// Copyright © 2024 gg20-driver Authors
//
// This file is part of gg20-driver. The full gg20-driver copyright notice,
// including terms governing use, modification, and redistribution, is
// contained in the file LICENSE at the root of the source code
// distribution tree.

// Package driver implements the Round Driver: the send-all-then-receive-all
// primitives that move a black-box CryptoSM through one GG20 round at a
// time, and the canonical keygen/signing round plans built on top of them.
package driver

import (
	"context"
	"sort"

	logging "github.com/ipfs/go-log/v2"

	"github.com/opentss/gg20-driver/internal/errs"
	"github.com/opentss/gg20-driver/internal/sm"
	"github.com/opentss/gg20-driver/internal/transport"
	"github.com/opentss/gg20-driver/internal/wire"
)

var log = logging.Logger("gg20-driver")

// messageSM is the narrow surface both sm.KeygenSM and sm.SigningSM
// satisfy structurally; the driver only ever needs the queue and the
// incoming-message sink, never the output accessor.
type messageSM interface {
	MessageQueue() []sm.RoundMsg
	HandleIncoming(msg sm.RoundMsg) error
}

// Driver holds everything broadcast_then_collect and p2p_then_collect
// need: the transport, this party's rank, the active group (keygen's full
// [1..N] or signing's active set A), and the tag isolating this protocol
// run from any other concurrently in flight on the same Transport.
type Driver struct {
	Transport transport.Transport
	Me        uint16
	Group     []uint16
	Tag       uint32
	Task      string // "keygen" or "signing", for error classification
}

// Peers returns Group with Me removed, in ascending order.
func (d *Driver) Peers() []uint16 {
	peers := make([]uint16, 0, len(d.Group))
	for _, r := range d.Group {
		if r != d.Me {
			peers = append(peers, r)
		}
	}
	sort.Slice(peers, func(i, j int) bool { return peers[i] < peers[j] })
	return peers
}

// BroadcastThenCollect implements spec §4.3: dispatch message_queue()[msgIndex]
// to every other party in the group, then collect and hand in one message
// from each of them, in that order. Sends all go out before any recv
// begins, matching the natural ordering the spec sanctions.
func (d *Driver) BroadcastThenCollect(ctx context.Context, machine messageSM, msgIndex int) error {
	queue := machine.MessageQueue()
	if msgIndex >= len(queue) {
		return errs.New(errs.Protocol, d.Task, msgIndex, errProtoMismatch("message_queue index out of range"))
	}
	msg := queue[msgIndex]
	if msg.Sender != d.Me {
		return errs.New(errs.Protocol, d.Task, msgIndex, errProtoMismatch("refusing to dispatch a message whose sender is not me"))
	}

	bz, err := wire.Encode(msg)
	if err != nil {
		return errs.New(errs.Codec, d.Task, msgIndex, err)
	}

	peers := d.Peers()
	log.Debugf("%s: party %d broadcasting message %d to %v", d.Task, d.Me, msgIndex, peers)
	for _, r := range peers {
		if err := d.Transport.Send(ctx, r, d.Tag, bz); err != nil {
			return errs.New(errs.Transport, d.Task, msgIndex, err)
		}
	}
	for _, s := range peers {
		raw, err := d.Transport.Recv(ctx, s, d.Tag)
		if err != nil {
			return errs.New(errs.Transport, d.Task, msgIndex, err)
		}
		in, err := wire.Decode(raw)
		if err != nil {
			return errs.New(errs.Codec, d.Task, msgIndex, err)
		}
		if err := machine.HandleIncoming(in); err != nil {
			return errs.New(errs.Protocol, d.Task, msgIndex, err)
		}
	}
	return nil
}

// P2PThenCollect implements spec §4.3: for each index, dispatch the
// queued message to the single receiver it names, then collect one
// inbound message from every other party in the group.
func (d *Driver) P2PThenCollect(ctx context.Context, machine messageSM, msgIndices []int) error {
	queue := machine.MessageQueue()
	log.Debugf("%s: party %d sending messages %v point-to-point", d.Task, d.Me, msgIndices)
	for _, idx := range msgIndices {
		if idx >= len(queue) {
			return errs.New(errs.Protocol, d.Task, idx, errProtoMismatch("message_queue index out of range"))
		}
		msg := queue[idx]
		if msg.Sender != d.Me {
			return errs.New(errs.Protocol, d.Task, idx, errProtoMismatch("refusing to dispatch a message whose sender is not me"))
		}
		if msg.Receiver == nil {
			return errs.New(errs.Protocol, d.Task, idx, errProtoMismatch("p2p_then_collect message has no receiver"))
		}

		bz, err := wire.Encode(msg)
		if err != nil {
			return errs.New(errs.Codec, d.Task, idx, err)
		}
		if err := d.Transport.Send(ctx, *msg.Receiver, d.Tag, bz); err != nil {
			return errs.New(errs.Transport, d.Task, idx, err)
		}
	}

	for _, s := range d.Peers() {
		raw, err := d.Transport.Recv(ctx, s, d.Tag)
		if err != nil {
			return errs.New(errs.Transport, d.Task, -1, err)
		}
		in, err := wire.Decode(raw)
		if err != nil {
			return errs.New(errs.Codec, d.Task, -1, err)
		}
		if err := machine.HandleIncoming(in); err != nil {
			return errs.New(errs.Protocol, d.Task, -1, err)
		}
	}
	return nil
}

type protoMismatchError string

func (e protoMismatchError) Error() string { return string(e) }

func errProtoMismatch(msg string) error { return protoMismatchError(msg) }
