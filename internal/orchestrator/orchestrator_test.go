// Copyright © 2024 gg20-driver Authors
//
// This file is part of gg20-driver. The full gg20-driver copyright notice,
// including terms governing use, modification, and redistribution, is
// contained in the file LICENSE at the root of the source code
// distribution tree.

package orchestrator_test

import (
	"context"
	"sync"
	"testing"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"golang.org/x/sync/errgroup"

	"github.com/opentss/gg20-driver/internal/orchestrator"
	"github.com/opentss/gg20-driver/internal/transport"
)

func TestOrchestrator(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Orchestrator Suite")
}

func runKeygenGroup(n, t int, net *transport.Network) (map[uint16][]byte, error) {
	results := make(map[uint16][]byte, n)
	var mu sync.Mutex

	g, ctx := errgroup.WithContext(context.Background())
	for rank := 1; rank <= n; rank++ {
		rank := uint16(rank)
		g.Go(func() error {
			o := &orchestrator.Orchestrator{Transport: net.For(rank), GroupID: "group-a"}
			out, err := o.RunKeygen(ctx, n, t, rank, 1)
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

var _ = Describe("Keygen and signing", func() {
	SetDefaultEventuallyTimeout(10 * time.Second)

	It("produces a local key for every party in a 3-of-3 keygen run", func() {
		net := transport.NewNetwork()
		keys, err := runKeygenGroup(3, 2, net)
		Expect(err).NotTo(HaveOccurred())
		Expect(keys).To(HaveLen(3))
		for _, k := range keys {
			Expect(k).NotTo(BeEmpty())
		}
	})

	It("returns an empty artifact for a party outside the active set", func() {
		net := transport.NewNetwork()
		keys, err := runKeygenGroup(3, 1, net)
		Expect(err).NotTo(HaveOccurred())

		o := &orchestrator.Orchestrator{Transport: net.For(3), GroupID: "group-a"}
		out, err := o.RunSign(context.Background(), 1, []uint16{1, 2}, keys[3], 3, []byte("hello"), 2)
		Expect(err).NotTo(HaveOccurred())
		Expect(out).To(BeEmpty())
	})

	It("refuses to sign with an active set smaller than the threshold", func() {
		net := transport.NewNetwork()
		keys, err := runKeygenGroup(3, 2, net)
		Expect(err).NotTo(HaveOccurred())

		o := &orchestrator.Orchestrator{Transport: net.For(1), GroupID: "group-a"}
		_, err = o.RunSign(context.Background(), 2, []uint16{1}, keys[1], 1, []byte("hello"), 3)
		Expect(err).To(HaveOccurred())
	})
})
