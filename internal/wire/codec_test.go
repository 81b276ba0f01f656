// Copyright © 2024 gg20-driver Authors
//
// This file is part of gg20-driver. The full gg20-driver copyright notice,
// including terms governing use, modification, and redistribution, is
// contained in the file LICENSE at the root of the source code
// distribution tree.

package wire

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/opentss/gg20-driver/internal/sm"
)

func TestRoundTrip(t *testing.T) {
	receiver := uint16(3)
	cases := []sm.RoundMsg{
		{Sender: 1, Receiver: nil, Body: []byte(`{"type":"commit"}`)},
		{Sender: 2, Receiver: &receiver, Body: []byte{0x01, 0x02, 0xff}},
		{Sender: 7, Receiver: nil, Body: []byte{}},
	}
	for _, want := range cases {
		bz, err := Encode(want)
		require.NoError(t, err)
		got, err := Decode(bz)
		require.NoError(t, err)
		assert.Equal(t, want.Sender, got.Sender)
		assert.Equal(t, want.IsBroadcast(), got.IsBroadcast())
		if want.Receiver != nil {
			require.NotNil(t, got.Receiver)
			assert.Equal(t, *want.Receiver, *got.Receiver)
		}
		assert.True(t, bytes.Equal(want.Body, got.Body))
	}
}

func TestDecodeTrimsTrailingNUL(t *testing.T) {
	want := sm.RoundMsg{Sender: 5, Body: []byte("payload")}
	bz, err := Encode(want)
	require.NoError(t, err)

	padded := make([]byte, 18000)
	copy(padded, bz)

	got, err := Decode(padded)
	require.NoError(t, err)
	assert.Equal(t, want.Sender, got.Sender)
	assert.Equal(t, want.Body, got.Body)
}

func TestDecodeMalformedIsFatal(t *testing.T) {
	_, err := Decode([]byte("not json"))
	assert.Error(t, err)
}
