package main

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/boddenberg/finboard-bfa/internal/domain"

	"github.com/spf13/cobra"
)

var flagCollection string

var snapshotCmd = &cobra.Command{
	Use:   "snapshot",
	Short: "Run one dashboard round and print the result as JSON",
	RunE:  runSnapshot,
}

func init() {
	snapshotCmd.Flags().StringVar(&flagCollection, "collection", "",
		"Print one collection only ("+strings.Join(domain.Collections, ", ")+")")
	rootCmd.AddCommand(snapshotCmd)
}

func runSnapshot(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	a, err := newApp(ctx, cfg)
	if err != nil {
		return err
	}
	defer a.close()

	if err := a.dashboard.Refetch(ctx); err != nil {
		return err
	}
	snap := a.dashboard.Snapshot()

	var out any = snap
	if flagCollection != "" {
		collection, ok := snap.Collection(flagCollection)
		if !ok {
			return fmt.Errorf("unknown collection %q", flagCollection)
		}
		out = collection
	}
	return printJSON(cmd, out)
}

func printJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
