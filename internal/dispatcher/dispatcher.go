// Copyright © 2024 gg20-driver Authors
//
// This file is part of gg20-driver. The full gg20-driver copyright notice,
// including terms governing use, modification, and redistribution, is
// contained in the file LICENSE at the root of the source code
// distribution tree.

// Package dispatcher accepts DispatchRequest work units and routes them
// to the Orchestrator, validating parameter blobs once up front.
package dispatcher

import (
	"context"
	"encoding/json"
	"os"

	"github.com/hashicorp/go-multierror"
	logging "github.com/ipfs/go-log/v2"
	"github.com/pkg/errors"

	"github.com/opentss/gg20-driver/internal/errs"
	"github.com/opentss/gg20-driver/internal/orchestrator"
)

var log = logging.Logger("gg20-driver")

// FuncName names which Orchestrator entry point a DispatchRequest targets.
type FuncName string

const (
	FuncKeygen  FuncName = "keygen"
	FuncSigning FuncName = "signing"
)

// DispatchRequest is one inbound work unit: which function to run, its
// parameter blob (unparsed JSON, field names exactly as spec.md §4.5
// lists), and a reference to this party's key file on disk: read for
// signing, and written with the keygen result when set on a keygen request.
type DispatchRequest struct {
	FuncName   FuncName
	ParamBlob  []byte
	Me         uint16
	Tag        uint32
	KeyFileRef string
}

// KeygenParams is the parsed, validated parameter blob for a keygen
// request.
type KeygenParams struct {
	NumParties   int `json:"num_parties"`
	NumThreshold int `json:"num_threshold"`
}

func (p KeygenParams) validate() error {
	var merr *multierror.Error
	if p.NumParties <= 0 {
		merr = multierror.Append(merr, errors.New("num_parties must be positive"))
	}
	if p.NumThreshold < 0 {
		merr = multierror.Append(merr, errors.New("num_threshold must be non-negative"))
	}
	if p.NumParties > 0 && p.NumThreshold >= p.NumParties {
		merr = multierror.Append(merr, errors.New("num_threshold must be less than num_parties"))
	}
	return merr.ErrorOrNil()
}

// SignParams is the parsed, validated parameter blob for a signing
// request.
type SignParams struct {
	NumThreshold  int      `json:"num_threshold"`
	ActiveParties []uint16 `json:"active_parties"`
	Message       []byte   `json:"message"`
}

func (p SignParams) validate() error {
	var merr *multierror.Error
	if p.NumThreshold < 0 {
		merr = multierror.Append(merr, errors.New("num_threshold must be non-negative"))
	}
	if len(p.ActiveParties) < p.NumThreshold+1 {
		merr = multierror.Append(merr, errors.New("active_parties smaller than threshold+1"))
	}
	if len(p.Message) == 0 {
		merr = multierror.Append(merr, errors.New("message must not be empty"))
	}
	return merr.ErrorOrNil()
}

// Dispatcher routes DispatchRequests to an Orchestrator and returns the
// resulting bytes. A keygen result is also written to the request's
// KeyFileRef when one is set; a signing result is only returned.
type Dispatcher struct {
	Orchestrator *orchestrator.Orchestrator
}

// Dispatch parses req's parameter blob, invokes the matching Orchestrator
// entry point, and returns the output bytes. Unknown JSON fields in the
// blob are ignored per spec.md §6.
func (d *Dispatcher) Dispatch(ctx context.Context, req DispatchRequest) ([]byte, error) {
	log.Debugf("dispatch: func=%s me=%d tag=%d", req.FuncName, req.Me, req.Tag)
	switch req.FuncName {
	case FuncKeygen:
		return d.dispatchKeygen(ctx, req)
	case FuncSigning:
		return d.dispatchSigning(ctx, req)
	default:
		return nil, errs.New(errs.Config, string(req.FuncName), -1, errors.Errorf("unknown func_name %q", req.FuncName))
	}
}

func (d *Dispatcher) dispatchKeygen(ctx context.Context, req DispatchRequest) ([]byte, error) {
	var params KeygenParams
	if err := json.Unmarshal(req.ParamBlob, &params); err != nil {
		return nil, errs.New(errs.Config, "keygen", -1, err)
	}
	if err := params.validate(); err != nil {
		return nil, errs.New(errs.Config, "keygen", -1, err)
	}

	out, err := d.Orchestrator.RunKeygen(ctx, params.NumParties, params.NumThreshold, req.Me, req.Tag)
	if err != nil {
		return nil, err
	}
	if req.KeyFileRef != "" {
		if err := os.WriteFile(req.KeyFileRef, out, 0o600); err != nil {
			return nil, errs.New(errs.Config, "keygen", -1, errors.Wrap(err, "write key file"))
		}
	}
	return out, nil
}

func (d *Dispatcher) dispatchSigning(ctx context.Context, req DispatchRequest) ([]byte, error) {
	var params SignParams
	if err := json.Unmarshal(req.ParamBlob, &params); err != nil {
		return nil, errs.New(errs.Config, "signing", -1, err)
	}
	if err := params.validate(); err != nil {
		return nil, errs.New(errs.Config, "signing", -1, err)
	}

	localKey, err := os.ReadFile(req.KeyFileRef)
	if err != nil {
		return nil, errs.New(errs.Config, "signing", -1, errors.Wrap(err, "read key file"))
	}

	return d.Orchestrator.RunSign(ctx, params.NumThreshold, params.ActiveParties, localKey, req.Me, params.Message, req.Tag)
}
