// Copyright © 2024 gg20-driver Authors
//
// This file is part of gg20-driver. The full gg20-driver copyright notice,
// including terms governing use, modification, and redistribution, is
// contained in the file LICENSE at the root of the source code
// distribution tree.

// Package transport implements the byte-accurate, order-preserving,
// per-ordered-pair channel contract of spec.md §4.1.
package transport

import "context"

// Transport is the opaque bidirectional message channel between any pair
// of party ranks. Implementations need only guarantee FIFO delivery per
// (peer, tag) pair; they are not required to frame messages.
type Transport interface {
	// Send delivers payload exactly once to peer on the given tag.
	Send(ctx context.Context, peer uint16, tag uint32, payload []byte) error

	// Recv blocks until a payload from peer on tag arrives.
	Recv(ctx context.Context, peer uint16, tag uint32) ([]byte, error)
}

// RecvBufferSize is the fixed-size receive buffer spec.md §4.1/§6
// mandates for round messages: large enough to exceed the largest
// cryptographic payload observed, with room for trailing NUL padding
// that the codec is required to tolerate.
const RecvBufferSize = 18000
