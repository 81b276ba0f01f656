// Copyright © 2024 gg20-driver Authors
//
// This file is part of gg20-driver. The full gg20-driver copyright notice,
// including terms governing use, modification, and redistribution, is
// contained in the file LICENSE at the root of the source code
// distribution tree.

package dispatcher

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDispatchRejectsUnknownFuncName(t *testing.T) {
	d := &Dispatcher{}
	_, err := d.Dispatch(context.Background(), DispatchRequest{FuncName: "bogus"})
	assert.Error(t, err)
}

func TestKeygenParamsValidateAggregatesAllErrors(t *testing.T) {
	err := KeygenParams{NumParties: 0, NumThreshold: -1}.validate()
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "num_parties")
	assert.Contains(t, err.Error(), "num_threshold")
}

func TestKeygenParamsValidateRejectsThresholdAtOrAboveParties(t *testing.T) {
	err := KeygenParams{NumParties: 3, NumThreshold: 3}.validate()
	assert.Error(t, err)
}

func TestKeygenParamsValidateAccepts(t *testing.T) {
	err := KeygenParams{NumParties: 3, NumThreshold: 1}.validate()
	assert.NoError(t, err)
}

func TestSignParamsValidateRejectsTooFewActive(t *testing.T) {
	err := SignParams{NumThreshold: 2, ActiveParties: []uint16{1, 2}, Message: []byte("m")}.validate()
	assert.Error(t, err)
}

func TestSignParamsValidateRejectsEmptyMessage(t *testing.T) {
	err := SignParams{NumThreshold: 1, ActiveParties: []uint16{1, 2}, Message: nil}.validate()
	assert.Error(t, err)
}

func TestSignParamsValidateAccepts(t *testing.T) {
	err := SignParams{NumThreshold: 1, ActiveParties: []uint16{1, 2, 3}, Message: []byte("m")}.validate()
	assert.NoError(t, err)
}

func TestDispatchKeygenIgnoresUnknownFields(t *testing.T) {
	d := &Dispatcher{}
	req := DispatchRequest{
		FuncName:  FuncKeygen,
		ParamBlob: []byte(`{"num_parties":0,"num_threshold":0,"unexpected_field":"ignored"}`),
	}
	_, err := d.Dispatch(context.Background(), req)
	// fails validation (num_parties must be positive) rather than on the
	// unexpected field, proving unknown fields are tolerated not rejected.
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "num_parties")
}
