// Copyright © 2024 gg20-driver Authors
//
// This file is part of gg20-driver. The full gg20-driver copyright notice,
// including terms governing use, modification, and redistribution, is
// contained in the file LICENSE at the root of the source code
// distribution tree.

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	logging "github.com/ipfs/go-log/v2"
	"github.com/spf13/cobra"

	"github.com/opentss/gg20-driver/internal/dispatcher"
	"github.com/opentss/gg20-driver/internal/orchestrator"
	"github.com/opentss/gg20-driver/internal/simulate"
	"github.com/opentss/gg20-driver/internal/transport"
)

var (
	groupID    string
	parties    int
	threshold  int
	me         int
	outputFile string

	activeParties []int
	keyFile       string
	message       string

	netDir string

	rootCmd = &cobra.Command{
		Use:   "gg20-driver",
		Short: "Per-party driver for the GG20 threshold ECDSA protocol",
	}

	keygenCmd = &cobra.Command{
		Use:   "keygen",
		Short: "Run this party's side of a keygen protocol run",
		RunE:  runKeygen,
	}

	signCmd = &cobra.Command{
		Use:   "sign",
		Short: "Run this party's side of a signing protocol run",
		RunE:  runSign,
	}

	simulateCmd = &cobra.Command{
		Use:   "simulate",
		Short: "Run every party of the group in-process, for local experimentation",
	}

	simulateKeygenCmd = &cobra.Command{
		Use:   "keygen",
		Short: "Simulate a full keygen run",
		RunE:  runSimulateKeygen,
	}
)

func init() {
	logging.SetLogLevel("gg20-driver", envOr("GG20_LOG_LEVEL", "info"))

	rootCmd.PersistentFlags().StringVar(&groupID, "group", "default", "group identity used to derive deterministic party IDs")

	keygenCmd.Flags().IntVar(&parties, "parties", 0, "total number of parties N (required)")
	keygenCmd.Flags().IntVar(&threshold, "threshold", 0, "threshold t (required)")
	keygenCmd.Flags().IntVar(&me, "me", 0, "this party's rank, 1..N (required)")
	keygenCmd.Flags().StringVar(&outputFile, "out", "", "file to write the textually encoded LocalKey to (required)")
	keygenCmd.Flags().StringVar(&netDir, "netdir", "", "shared directory for the file-drop transport (required)")
	_ = keygenCmd.MarkFlagRequired("parties")
	_ = keygenCmd.MarkFlagRequired("threshold")
	_ = keygenCmd.MarkFlagRequired("me")
	_ = keygenCmd.MarkFlagRequired("out")
	_ = keygenCmd.MarkFlagRequired("netdir")

	signCmd.Flags().IntVar(&threshold, "threshold", 0, "threshold t (required)")
	signCmd.Flags().IntSliceVar(&activeParties, "active", nil, "active party ranks, comma-separated (required)")
	signCmd.Flags().IntVar(&me, "me", 0, "this party's rank (required)")
	signCmd.Flags().StringVar(&keyFile, "key", "", "path to this party's LocalKey file from keygen (required)")
	signCmd.Flags().StringVar(&message, "message", "", "message to sign (required)")
	signCmd.Flags().StringVar(&outputFile, "out", "", "file to write the textually encoded signature to (required)")
	signCmd.Flags().StringVar(&netDir, "netdir", "", "shared directory for the file-drop transport (required)")
	_ = signCmd.MarkFlagRequired("threshold")
	_ = signCmd.MarkFlagRequired("active")
	_ = signCmd.MarkFlagRequired("me")
	_ = signCmd.MarkFlagRequired("key")
	_ = signCmd.MarkFlagRequired("message")
	_ = signCmd.MarkFlagRequired("out")
	_ = signCmd.MarkFlagRequired("netdir")

	simulateKeygenCmd.Flags().IntVar(&parties, "parties", 0, "total number of parties N (required)")
	simulateKeygenCmd.Flags().IntVar(&threshold, "threshold", 0, "threshold t (required)")
	_ = simulateKeygenCmd.MarkFlagRequired("parties")
	_ = simulateKeygenCmd.MarkFlagRequired("threshold")

	simulateCmd.AddCommand(simulateKeygenCmd)
	rootCmd.AddCommand(keygenCmd, signCmd, simulateCmd)
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func runKeygen(cmd *cobra.Command, args []string) error {
	blob, err := json.Marshal(dispatcher.KeygenParams{NumParties: parties, NumThreshold: threshold})
	if err != nil {
		return err
	}
	d := &dispatcher.Dispatcher{Orchestrator: &orchestrator.Orchestrator{
		Transport: transport.NewFileDrop(netDir, uint16(me)),
		GroupID:   groupID,
	}}
	out, err := d.Dispatch(cmd.Context(), dispatcher.DispatchRequest{
		FuncName:   dispatcher.FuncKeygen,
		ParamBlob:  blob,
		Me:         uint16(me),
		Tag:        1,
		KeyFileRef: outputFile,
	})
	if err != nil {
		return err
	}
	fmt.Fprintf(os.Stdout, "wrote %d bytes to %s\n", len(out), outputFile)
	return nil
}

func runSign(cmd *cobra.Command, args []string) error {
	active := make([]uint16, len(activeParties))
	for i, a := range activeParties {
		active[i] = uint16(a)
	}
	blob, err := json.Marshal(dispatcher.SignParams{NumThreshold: threshold, ActiveParties: active, Message: []byte(message)})
	if err != nil {
		return err
	}
	d := &dispatcher.Dispatcher{Orchestrator: &orchestrator.Orchestrator{
		Transport: transport.NewFileDrop(netDir, uint16(me)),
		GroupID:   groupID,
	}}
	out, err := d.Dispatch(cmd.Context(), dispatcher.DispatchRequest{
		FuncName:   dispatcher.FuncSigning,
		ParamBlob:  blob,
		Me:         uint16(me),
		Tag:        2,
		KeyFileRef: keyFile,
	})
	if err != nil {
		return err
	}
	if len(out) == 0 {
		fmt.Fprintln(os.Stdout, "not in active set, nothing produced")
		return nil
	}
	return os.WriteFile(outputFile, out, 0o600)
}

func runSimulateKeygen(cmd *cobra.Command, args []string) error {
	keys, err := simulate.Keygen(context.Background(), groupID, parties, threshold)
	if err != nil {
		return err
	}
	for rank, key := range keys {
		fmt.Fprintf(os.Stdout, "party %d: %d bytes\n", rank, len(key))
	}
	return nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
