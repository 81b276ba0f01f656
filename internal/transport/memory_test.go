// Copyright © 2024 gg20-driver Authors
//
// This file is part of gg20-driver. The full gg20-driver copyright notice,
// including terms governing use, modification, and redistribution, is
// contained in the file LICENSE at the root of the source code
// distribution tree.

package transport

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryNetworkFIFOPerPair(t *testing.T) {
	net := NewNetwork()
	sender := net.For(1)
	receiver := net.For(2)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		require.NoError(t, sender.Send(ctx, 2, 7, []byte("first")))
		require.NoError(t, sender.Send(ctx, 2, 7, []byte("second")))
	}()

	first, err := receiver.Recv(ctx, 1, 7)
	require.NoError(t, err)
	assert.Equal(t, []byte("first"), first)

	second, err := receiver.Recv(ctx, 1, 7)
	require.NoError(t, err)
	assert.Equal(t, []byte("second"), second)

	wg.Wait()
}

func TestMemoryNetworkTagsAreIsolated(t *testing.T) {
	net := NewNetwork()
	sender := net.For(1)
	receiver := net.For(2)
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	require.NoError(t, sender.Send(ctx, 2, 1, []byte("round1")))
	require.NoError(t, sender.Send(ctx, 2, 2, []byte("round2")))

	got2, err := receiver.Recv(ctx, 1, 2)
	require.NoError(t, err)
	assert.Equal(t, []byte("round2"), got2)

	got1, err := receiver.Recv(ctx, 1, 1)
	require.NoError(t, err)
	assert.Equal(t, []byte("round1"), got1)
}

func TestMemoryNetworkRecvRespectsContext(t *testing.T) {
	net := NewNetwork()
	receiver := net.For(2)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	_, err := receiver.Recv(ctx, 1, 1)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestMemoryNetworkRejectsSelfSend(t *testing.T) {
	net := NewNetwork()
	me := net.For(1)
	err := me.Send(context.Background(), 1, 1, []byte("x"))
	assert.Error(t, err)
}
