// Copyright © 2024 gg20-driver Authors
//
// This file is part of gg20-driver. The full gg20-driver copyright notice,
// including terms governing use, modification, and redistribution, is
// contained in the file LICENSE at the root of the source code
// distribution tree.

package tsslib

import (
	"github.com/binance-chain/tss-lib/ecdsa/keygen"
	"github.com/decred/dcrd/dcrec/secp256k1/v4"
)

// ecdsaPubBytes renders the group public key saved alongside a party's
// key share as a compressed secp256k1 point, the wire form the rest of
// the driver treats as opaque bytes.
func ecdsaPubBytes(save keygen.LocalPartySaveData) []byte {
	if save.ECDSAPub == nil {
		return nil
	}
	var x, y secp256k1.FieldVal
	x.SetByteSlice(save.ECDSAPub.X().Bytes())
	y.SetByteSlice(save.ECDSAPub.Y().Bytes())
	pub := secp256k1.NewPublicKey(&x, &y)
	return pub.SerializeCompressed()
}
