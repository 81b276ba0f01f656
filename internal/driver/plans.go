// Copyright © 2024 gg20-driver Authors
//
// This file is part of gg20-driver. The full gg20-driver copyright notice,
// including terms governing use, modification, and redistribution, is
// contained in the file LICENSE at the root of the source code
// distribution tree.

package driver

import (
	"context"

	"github.com/opentss/gg20-driver/internal/errs"
	"github.com/opentss/gg20-driver/internal/sm"
	"github.com/opentss/gg20-driver/internal/wire"
)

// consecutive returns [a, a+1, ..., b], or nil if b < a.
func consecutive(a, b int) []int {
	if b < a {
		return nil
	}
	out := make([]int, 0, b-a+1)
	for i := a; i <= b; i++ {
		out = append(out, i)
	}
	return out
}

// RunKeygen executes the canonical four-round keygen plan against machine.
// The queue layout follows the bound library's real round structure rather
// than a uniform broadcast/p2p/broadcast shape: round 1 is one broadcast;
// round 2 sends its n-1 point-to-point VSS shares before its own broadcast,
// so it is decomposed into a p2p_then_collect followed by a
// broadcast_then_collect, in that library order; round 3 is n-1
// point-to-point Paillier shares with no broadcast; round 4 produces no
// wire traffic at all and only finalizes once round 3's messages are in.
func (d *Driver) RunKeygen(ctx context.Context, machine sm.KeygenSM) (sm.LocalKey, error) {
	n := len(d.Group)

	if err := machine.Proceed(); err != nil {
		return sm.LocalKey{}, errs.New(errs.Protocol, "keygen", 1, err)
	}
	if err := d.BroadcastThenCollect(ctx, machine, 0); err != nil {
		return sm.LocalKey{}, err
	}

	// Round 2: n-1 p2p VSS shares, then one broadcast of the decommitment.
	if err := d.P2PThenCollect(ctx, machine, consecutive(1, n-1)); err != nil {
		return sm.LocalKey{}, err
	}
	if err := d.BroadcastThenCollect(ctx, machine, n); err != nil {
		return sm.LocalKey{}, err
	}

	// Round 3: n-1 p2p Paillier shares. Round 4 finalizes silently once
	// these are all handled, so there is nothing left to dispatch.
	if err := d.P2PThenCollect(ctx, machine, consecutive(n+1, 2*n-1)); err != nil {
		return sm.LocalKey{}, err
	}
	if err := machine.Proceed(); err != nil {
		return sm.LocalKey{}, errs.New(errs.Protocol, "keygen", 4, err)
	}

	key, ok := machine.PickOutput()
	if !ok {
		return sm.LocalKey{}, errs.New(errs.Completion, "keygen", 4, errProtoMismatch("pick_output returned nothing after the final round"))
	}
	return key, nil
}

// RunSignOffline executes the nine network rounds of GG20 signing against
// machine, sized to the active group carried on d.Group. Round 1 sends its
// m-1 p2p MtA messages before its own broadcast, decomposed the same way
// keygen's round 2 is; round 2 is pure p2p; rounds 3 through 9 are each a
// single broadcast. The finalization round that follows round 9 produces no
// messages of its own: by the time round 9's broadcast has been collected
// from every active peer, the bound library has already finished computing
// the signature internally, which is why pick_output below returns an
// OfflineOutput that already carries it.
func (d *Driver) RunSignOffline(ctx context.Context, machine sm.SigningSM) (sm.OfflineOutput, error) {
	m := len(d.Group)

	if err := machine.Proceed(); err != nil {
		return sm.OfflineOutput{}, errs.New(errs.Protocol, "signing", 1, err)
	}

	// Round 1: m-1 p2p MtA messages, then one broadcast commitment.
	if err := d.P2PThenCollect(ctx, machine, consecutive(0, m-2)); err != nil {
		return sm.OfflineOutput{}, err
	}
	if err := d.BroadcastThenCollect(ctx, machine, m-1); err != nil {
		return sm.OfflineOutput{}, err
	}

	// Round 2: m-1 p2p messages, no broadcast.
	if err := d.P2PThenCollect(ctx, machine, consecutive(m, 2*m-2)); err != nil {
		return sm.OfflineOutput{}, err
	}

	// Rounds 3 through 9: one broadcast each.
	for idx := 2*m - 1; idx <= 2*m+5; idx++ {
		if err := d.BroadcastThenCollect(ctx, machine, idx); err != nil {
			return sm.OfflineOutput{}, err
		}
	}

	if err := machine.Proceed(); err != nil {
		return sm.OfflineOutput{}, errs.New(errs.Protocol, "signing", 9, err)
	}

	out, ok := machine.PickOutput()
	if !ok {
		return sm.OfflineOutput{}, errs.New(errs.Completion, "signing", 9, errProtoMismatch("pick_output returned nothing after the final round"))
	}
	return out, nil
}

// RunSignOnline executes the driver-level online round: derive this party's
// partial share, exchange it with every other active party, and combine
// them into the final signature.
func (d *Driver) RunSignOnline(ctx context.Context, signer sm.OnlineSigner, offline sm.OfflineOutput, message []byte) (sm.Signature, error) {
	mine, err := signer.New(message, offline)
	if err != nil {
		return sm.Signature{}, errs.New(errs.Protocol, "signing", 10, err)
	}

	bz, err := wire.EncodePartialShare(mine)
	if err != nil {
		return sm.Signature{}, errs.New(errs.Codec, "signing", 10, err)
	}

	peers := d.Peers()
	for _, r := range peers {
		if err := d.Transport.Send(ctx, r, d.Tag, bz); err != nil {
			return sm.Signature{}, errs.New(errs.Transport, "signing", 10, err)
		}
	}

	shares := make([]sm.PartialShare, 0, len(peers)+1)
	shares = append(shares, mine)
	for _, s := range peers {
		raw, err := d.Transport.Recv(ctx, s, d.Tag)
		if err != nil {
			return sm.Signature{}, errs.New(errs.Transport, "signing", 10, err)
		}
		share, err := wire.DecodePartialShare(raw)
		if err != nil {
			return sm.Signature{}, errs.New(errs.Codec, "signing", 10, err)
		}
		shares = append(shares, share)
	}

	sig, err := signer.Complete(shares)
	if err != nil {
		return sm.Signature{}, errs.New(errs.Protocol, "signing", 10, err)
	}
	return sig, nil
}
