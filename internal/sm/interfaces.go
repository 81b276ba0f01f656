// Copyright © 2024 gg20-driver Authors
//
// This file is part of gg20-driver. The full gg20-driver copyright notice,
// including terms governing use, modification, and redistribution, is
// contained in the file LICENSE at the root of the source code
// distribution tree.

package sm

// KeygenSM is the black-box keygen state machine: proceed, message_queue,
// handle_incoming, pick_output, as named in spec §3/§9. A concrete
// implementation owns the OutMsgQueue; the Round Driver only indexes into
// it through MessageQueue.
type KeygenSM interface {
	// Proceed advances local computation for the current round. It may
	// append new messages to the queue returned by MessageQueue.
	Proceed() error

	// MessageQueue returns the full, append-only sequence of messages
	// this party has produced so far, in production order. Positions
	// already dispatched by the driver are never reused.
	MessageQueue() []RoundMsg

	// HandleIncoming feeds one peer message into the state machine.
	HandleIncoming(msg RoundMsg) error

	// PickOutput returns the finished LocalKey once the protocol has
	// completed, or ok=false if it has not yet.
	PickOutput() (key LocalKey, ok bool)
}

// SigningSM is the black-box offline-signing state machine.
type SigningSM interface {
	Proceed() error
	MessageQueue() []RoundMsg
	HandleIncoming(msg RoundMsg) error

	// PickOutput returns the completed offline stage once ready.
	PickOutput() (out OfflineOutput, ok bool)
}

// OnlineSigner completes the message-dependent signing round once an
// OfflineOutput is available from a SigningSM, mirroring SignManual in
// spec §4.3 step 5.
type OnlineSigner interface {
	// New derives this party's partial signature share for message
	// against the given offline output.
	New(message []byte, offline OfflineOutput) (PartialShare, error)

	// Complete combines every active party's partial share (including
	// this party's own) into the final signature.
	Complete(shares []PartialShare) (Signature, error)
}
