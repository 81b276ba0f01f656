// Copyright © 2024 gg20-driver Authors
//
// This file is part of gg20-driver. The full gg20-driver copyright notice,
// including terms governing use, modification, and redistribution, is
// contained in the file LICENSE at the root of the source code
// distribution tree.

package transport

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/pkg/errors"
)

// FileDrop is a Transport that hands every message off through the
// filesystem, one file per (from, to, tag) triple, polling for the peer's
// file the way the teacher's mpc.SharedPartyUpdater polls for
// GetShareFilePath. It exists for the out-of-process deployment spec.md
// §4.1 describes: cooperating processes with a shared directory and no
// direct socket between them.
type FileDrop struct {
	dir      string
	me       uint16
	pollStep time.Duration
}

// NewFileDrop roots a file-drop transport at dir for party rank me. dir
// must already exist and be writable by every party in the run.
func NewFileDrop(dir string, me uint16) *FileDrop {
	return &FileDrop{dir: dir, me: me, pollStep: 50 * time.Millisecond}
}

type shareFile struct {
	From uint16 `json:"from"`
	To   uint16 `json:"to"`
	Tag  uint32 `json:"tag"`
	Hex  string `json:"hex"`
}

func (f *FileDrop) path(from, to uint16, tag uint32) string {
	return filepath.Join(f.dir, fmt.Sprintf("%d_%d_%d.json", from, to, tag))
}

func (f *FileDrop) Send(ctx context.Context, peer uint16, tag uint32, payload []byte) error {
	rec := shareFile{From: f.me, To: peer, Tag: tag, Hex: hex.EncodeToString(payload)}
	bz, err := json.Marshal(rec)
	if err != nil {
		return errors.Wrap(err, "marshal share file")
	}

	dst := f.path(f.me, peer, tag)
	tmp := dst + ".tmp"
	if err := os.WriteFile(tmp, bz, 0o600); err != nil {
		return errors.Wrap(err, "write share file")
	}
	// rename is atomic within the same directory, so a concurrent reader
	// polling for dst never observes a partially written file.
	if err := os.Rename(tmp, dst); err != nil {
		return errors.Wrap(err, "publish share file")
	}
	return nil
}

func (f *FileDrop) Recv(ctx context.Context, peer uint16, tag uint32) ([]byte, error) {
	src := f.path(peer, f.me, tag)
	ticker := time.NewTicker(f.pollStep)
	defer ticker.Stop()

	for {
		bz, err := os.ReadFile(src)
		if err == nil {
			var rec shareFile
			if err := json.Unmarshal(bz, &rec); err != nil {
				return nil, errors.Wrap(err, "unmarshal share file")
			}
			payload, err := hex.DecodeString(rec.Hex)
			if err != nil {
				return nil, errors.Wrap(err, "decode share file payload")
			}
			return payload, nil
		}
		if !os.IsNotExist(err) {
			return nil, errors.Wrap(err, "read share file")
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-ticker.C:
		}
	}
}
