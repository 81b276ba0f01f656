// Copyright © 2024 gg20-driver Authors
//
// This file is part of gg20-driver. The full gg20-driver copyright notice,
// including terms governing use, modification, and redistribution, is
// contained in the file LICENSE at the root of the source code
// distribution tree.

// Package orchestrator implements the two top-level per-party entry
// points, run_keygen and run_sign, wiring the Round Driver to the bound
// cryptographic library and the wire codec.
package orchestrator

import (
	"context"
	"fmt"

	logging "github.com/ipfs/go-log/v2"

	"github.com/opentss/gg20-driver/internal/driver"
	"github.com/opentss/gg20-driver/internal/errs"
	"github.com/opentss/gg20-driver/internal/transport"
	"github.com/opentss/gg20-driver/internal/tsslib"
	"github.com/opentss/gg20-driver/internal/wire"
)

var log = logging.Logger("gg20-driver")

// Orchestrator runs exactly one protocol invocation at a time per
// instance; independent invocations proceed concurrently only if each
// is given a distinct Tag so the shared Transport isolates them
// (spec.md §4.4).
type Orchestrator struct {
	Transport transport.Transport
	GroupID   string
}

// RunKeygen executes the keygen plan for this party and returns the
// textually encoded LocalKey.
func (o *Orchestrator) RunKeygen(ctx context.Context, n, t int, me uint16, tag uint32) ([]byte, error) {
	group := fullGroup(n)

	adapter, err := tsslib.NewKeygenAdapter(o.GroupID, group, t, me)
	if err != nil {
		return nil, errs.New(errs.Config, "keygen", -1, err)
	}

	d := &driver.Driver{Transport: o.Transport, Me: me, Group: group, Tag: tag, Task: "keygen"}
	log.Infof("keygen: party %d starting, n=%d t=%d", me, n, t)

	key, err := d.RunKeygen(ctx, adapter)
	if err != nil {
		log.Errorf("keygen: party %d failed: %v", me, err)
		return nil, err
	}

	bz, err := wire.EncodeLocalKey(key)
	if err != nil {
		return nil, errs.New(errs.Codec, "keygen", -1, err)
	}
	log.Infof("keygen: party %d complete", me)
	return bz, nil
}

// RunSign executes the signing plan for this party and returns the
// textually encoded signature, or an empty artifact if me is not in the
// active set (spec.md §4.3 edge case).
func (o *Orchestrator) RunSign(ctx context.Context, t int, active []uint16, localKey []byte, me uint16, message []byte, tag uint32) ([]byte, error) {
	if len(active) < t+1 {
		return nil, errs.New(errs.Config, "signing", -1, errTooFewActive{want: t + 1, got: len(active)})
	}
	if !contains(active, me) {
		return []byte{}, nil
	}

	key, err := wire.DecodeLocalKey(localKey)
	if err != nil {
		return nil, errs.New(errs.Codec, "signing", -1, err)
	}
	saveData, err := tsslib.LoadSaveData(key)
	if err != nil {
		return nil, errs.New(errs.Config, "signing", -1, err)
	}

	offlineAdapter, err := tsslib.NewSigningAdapter(o.GroupID, active, t, me, saveData, message)
	if err != nil {
		return nil, errs.New(errs.Config, "signing", -1, err)
	}

	d := &driver.Driver{Transport: o.Transport, Me: me, Group: active, Tag: tag, Task: "signing"}
	log.Infof("signing: party %d starting, active=%v", me, active)

	offline, err := d.RunSignOffline(ctx, offlineAdapter)
	if err != nil {
		log.Errorf("signing: party %d offline stage failed: %v", me, err)
		return nil, err
	}

	combiner := tsslib.NewOnlineCombiner(key.GroupPublicKey)
	sig, err := d.RunSignOnline(ctx, combiner, offline, message)
	if err != nil {
		log.Errorf("signing: party %d online stage failed: %v", me, err)
		return nil, err
	}

	bz, err := wire.EncodeSignature(sig)
	if err != nil {
		return nil, errs.New(errs.Codec, "signing", -1, err)
	}
	log.Infof("signing: party %d complete", me)
	return bz, nil
}

func fullGroup(n int) []uint16 {
	group := make([]uint16, n)
	for i := 0; i < n; i++ {
		group[i] = uint16(i + 1)
	}
	return group
}

func contains(group []uint16, me uint16) bool {
	for _, r := range group {
		if r == me {
			return true
		}
	}
	return false
}

type errTooFewActive struct{ want, got int }

func (e errTooFewActive) Error() string {
	return fmt.Sprintf("active set too small: need %d, got %d", e.want, e.got)
}
