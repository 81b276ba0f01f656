// Copyright © 2024 gg20-driver Authors
//
// This file is part of gg20-driver. The full gg20-driver copyright notice,
// including terms governing use, modification, and redistribution, is
// contained in the file LICENSE at the root of the source code
// distribution tree.

// Package tsslib adapts github.com/binance-chain/tss-lib's push-style
// Party (Start/Update, out/end channels) to the pull-style
// proceed/message_queue/handle_incoming/pick_output contract the Round
// Driver expects, grounded on the teacher's mpc.SharedPartyUpdater and
// mpc/ec.keygen.go wiring loop.
package tsslib

import (
	"fmt"
	"math/big"

	"github.com/binance-chain/tss-lib/tss"
	"github.com/zeebo/blake3"

	"github.com/opentss/gg20-driver/internal/sm"
)

// PartyIDs derives a deterministic, sorted tss.SortedPartyIDs for a group
// of ranks, the way the teacher's mpc.MakeInitParties derives shareIDs
// from a hash of the group identity rather than trusting raw indices.
func PartyIDs(groupID string, group []uint16) tss.SortedPartyIDs {
	var unsorted tss.UnSortedPartyIDs
	for _, rank := range group {
		h := blake3.Sum256([]byte(fmt.Sprintf("%s|%d", groupID, rank)))
		key := new(big.Int).SetBytes(h[:])
		moniker := fmt.Sprintf("rank-%d", rank)
		unsorted = append(unsorted, tss.NewPartyID(fmt.Sprintf("%d", rank), moniker, key))
	}
	return tss.SortPartyIDs(unsorted)
}

func partyIDByRank(ids tss.SortedPartyIDs, rank uint16) *tss.PartyID {
	for _, id := range ids {
		if id.Id == fmt.Sprintf("%d", rank) {
			return id
		}
	}
	return nil
}

func rankOf(id *tss.PartyID) uint16 {
	var rank uint16
	fmt.Sscanf(id.Id, "%d", &rank)
	return rank
}

// queue is the append-only OutMsgQueue spec.md §3 describes: the adapter
// is the "cryptographic state machine" that owns it, and the driver only
// ever indexes into it via MessageQueue().
type queue struct {
	msgs []sm.RoundMsg
}

func (q *queue) append(from uint16, to *uint16, body []byte) {
	q.msgs = append(q.msgs, sm.RoundMsg{Sender: from, Receiver: to, Body: body})
}

// drainOut converts a tss.Message pulled off a LocalParty's out channel
// into one or more RoundMsg entries on the queue: one broadcast entry
// when GetTo() is nil, one p2p entry per named recipient otherwise.
func (q *queue) drainOut(msg tss.Message, me uint16) error {
	bz, _, err := msg.WireBytes()
	if err != nil {
		return err
	}
	to := msg.GetTo()
	if to == nil {
		q.append(me, nil, bz)
		return nil
	}
	for _, t := range to {
		rank := rankOf(t)
		q.append(me, &rank, bz)
	}
	return nil
}
