// Copyright © 2024 gg20-driver Authors
//
// This file is part of gg20-driver. The full gg20-driver copyright notice,
// including terms governing use, modification, and redistribution, is
// contained in the file LICENSE at the root of the source code
// distribution tree.

package tsslib

import (
	"encoding/json"

	"github.com/binance-chain/tss-lib/ecdsa/keygen"
	"github.com/binance-chain/tss-lib/tss"
	"github.com/pkg/errors"

	"github.com/opentss/gg20-driver/internal/sm"
)

// KeygenAdapter binds one party's keygen.LocalParty to sm.KeygenSM.
type KeygenAdapter struct {
	party    tss.Party
	partyIDs tss.SortedPartyIDs
	me       uint16

	out   chan tss.Message
	end   chan keygen.LocalPartySaveData
	queue queue

	started bool
}

// NewKeygenAdapter constructs the local party for rank me within group,
// mirroring the teacher's mpc.KeygenProc wiring of tss.NewParameters and
// keygen.NewLocalParty, but for exactly one party rather than the
// teacher's all-in-one-process simulation.
func NewKeygenAdapter(groupID string, group []uint16, threshold int, me uint16) (*KeygenAdapter, error) {
	ids := PartyIDs(groupID, group)
	myID := partyIDByRank(ids, me)
	if myID == nil {
		return nil, errors.Errorf("rank %d not present in group", me)
	}

	ctx := tss.NewPeerContext(ids)
	params := tss.NewParameters(ctx, myID, len(group), threshold)

	out := make(chan tss.Message, len(group))
	end := make(chan keygen.LocalPartySaveData, 1)

	party := keygen.NewLocalParty(params, out, end)
	return &KeygenAdapter{party: party, partyIDs: ids, me: me, out: out, end: end}, nil
}

func (a *KeygenAdapter) Proceed() error {
	if !a.started {
		a.started = true
		if err := a.party.Start(); err != nil {
			return errors.Wrap(err, "start keygen party")
		}
	}
	a.drain()
	return nil
}

// drain pulls every message currently buffered on the out channel into
// the append-only queue without blocking: tss-lib's round.Start()/Update()
// push a round's messages onto out synchronously before returning, so a
// non-blocking drain after each call observes the whole round.
func (a *KeygenAdapter) drain() {
	for {
		select {
		case msg := <-a.out:
			_ = a.queue.drainOut(msg, a.me)
		default:
			return
		}
	}
}

func (a *KeygenAdapter) MessageQueue() []sm.RoundMsg {
	return a.queue.msgs
}

func (a *KeygenAdapter) HandleIncoming(msg sm.RoundMsg) error {
	from := partyIDByRank(a.partyIDs, msg.Sender)
	if from == nil {
		return errors.Errorf("unknown sender rank %d", msg.Sender)
	}
	parsed, err := tss.ParseWireMessage(msg.Body, from, msg.IsBroadcast())
	if err != nil {
		return errors.Wrap(err, "parse incoming keygen message")
	}
	if _, err := a.party.Update(parsed); err != nil {
		return errors.Wrap(err, "update keygen party")
	}
	a.drain()
	return nil
}

// LoadSaveData recovers the bound library's native save-data structure
// from a persisted sm.LocalKey, the inverse of PickOutput's Opaque
// encoding, so a later signing run can feed it to NewSigningAdapter.
func LoadSaveData(key sm.LocalKey) (keygen.LocalPartySaveData, error) {
	var save keygen.LocalPartySaveData
	if err := json.Unmarshal(key.Opaque, &save); err != nil {
		return keygen.LocalPartySaveData{}, errors.Wrap(err, "decode local key save data")
	}
	return save, nil
}

func (a *KeygenAdapter) PickOutput() (sm.LocalKey, bool) {
	select {
	case save := <-a.end:
		opaque, err := json.Marshal(save)
		if err != nil {
			return sm.LocalKey{}, false
		}
		return sm.LocalKey{
			Rank:           a.me,
			GroupPublicKey: ecdsaPubBytes(save),
			Opaque:         opaque,
		}, true
	default:
		return sm.LocalKey{}, false
	}
}
