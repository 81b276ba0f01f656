// Copyright © 2024 gg20-driver Authors
//
// This file is part of gg20-driver. The full gg20-driver copyright notice,
// including terms governing use, modification, and redistribution, is
// contained in the file LICENSE at the root of the source code
// distribution tree.

// Package simulate runs every party of a group in-process over a shared
// in-memory transport, the Go rendition of original_source/server/app.rs's
// one-thread-per-party demo harness and the teacher's mpc/ecdsa/ec.keygen.go
// in-process multi-party loop.
package simulate

import (
	"context"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/opentss/gg20-driver/internal/orchestrator"
	"github.com/opentss/gg20-driver/internal/transport"
)

// Keygen runs the keygen plan for every rank in [1, n] concurrently over
// one shared in-memory network and returns each rank's textually encoded
// LocalKey, indexed by rank.
func Keygen(ctx context.Context, groupID string, n, t int) (map[uint16][]byte, error) {
	net := transport.NewNetwork()
	results := make(map[uint16][]byte, n)
	var mu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	for rank := 1; rank <= n; rank++ {
		rank := uint16(rank)
		g.Go(func() error {
			o := &orchestrator.Orchestrator{Transport: net.For(rank), GroupID: groupID}
			out, err := o.RunKeygen(gctx, n, t, rank, 1)
			if err != nil {
				return err
			}
			mu.Lock()
			results[rank] = out
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// Sign runs the signing plan for every rank in active concurrently over
// one shared in-memory network and returns each active rank's textually
// encoded signature, indexed by rank. keys must contain a LocalKey for
// every rank in active.
func Sign(ctx context.Context, groupID string, t int, active []uint16, keys map[uint16][]byte, message []byte) (map[uint16][]byte, error) {
	net := transport.NewNetwork()
	results := make(map[uint16][]byte, len(active))
	var mu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	for _, rank := range active {
		rank := rank
		g.Go(func() error {
			o := &orchestrator.Orchestrator{Transport: net.For(rank), GroupID: groupID}
			out, err := o.RunSign(gctx, t, active, keys[rank], rank, message, 1)
			if err != nil {
				return err
			}
			mu.Lock()
			results[rank] = out
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
