// Copyright © 2024 gg20-driver Authors
//
// This file is part of gg20-driver. The full gg20-driver copyright notice,
// including terms governing use, modification, and redistribution, is
// contained in the file LICENSE at the root of the source code
// distribution tree.

package simulate

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKeygenProducesOneKeyPerParty(t *testing.T) {
	keys, err := Keygen(context.Background(), "sim-group", 4, 2)
	require.NoError(t, err)
	assert.Len(t, keys, 4)
	for rank, key := range keys {
		assert.NotEmpty(t, key, "rank %d", rank)
	}
}
