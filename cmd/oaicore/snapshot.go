package main

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strconv"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/lareferencia/lareferencia-core-lib-sub002/oai"
	"github.com/lareferencia/lareferencia-core-lib-sub002/snapshotstore"
)

var snapshotDirPattern = regexp.MustCompile(`^snapshot_(\d+)$`)

// discoverSnapshotIDs scans {basePath}/{acronym}/snapshots for
// snapshot_{id} directories, since a fresh CLI invocation has no
// in-memory snapshot table to query.
func discoverSnapshotIDs(fs afero.Fs, basePath, acronym string) ([]int64, error) {
	dir := filepath.Join(oai.NetworkBasePath(basePath, acronym), "snapshots")
	entries, err := afero.ReadDir(fs, dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	var ids []int64
	for _, e := range entries {
		m := snapshotDirPattern.FindStringSubmatch(e.Name())
		if m == nil {
			continue
		}
		id, err := strconv.ParseInt(m[1], 10, 64)
		if err != nil {
			continue
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func newSnapshotCmd(e *env) *cobra.Command {
	cmd := &cobra.Command{Use: "snapshot", Short: "Create, list, and inspect snapshots"}
	cmd.AddCommand(newSnapshotCreateCmd(e))
	cmd.AddCommand(newSnapshotListCmd(e))
	cmd.AddCommand(newSnapshotShowCmd(e))
	return cmd
}

func newSnapshotCreateCmd(e *env) *cobra.Command {
	var networkID int64
	var acronym string

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a new snapshot row for a network",
		RunE: func(cmd *cobra.Command, args []string) error {
			store := snapshotstore.New(e.fs, e.cfg.Store.BasePath, e.cfg, e.metrics)

			ids, err := discoverSnapshotIDs(e.fs, e.cfg.Store.BasePath, acronym)
			if err != nil {
				return err
			}
			for _, id := range ids {
				store.SeedNextID(id)
			}

			meta, err := store.CreateSnapshot(oai.NetworkInfo{ID: networkID, Acronym: acronym})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "created snapshot %d for network %s\n", meta.ID, acronym)
			return nil
		},
	}
	cmd.Flags().Int64Var(&networkID, "network-id", 0, "numeric network id")
	cmd.Flags().StringVar(&acronym, "acronym", "", "network acronym")
	cmd.MarkFlagRequired("acronym")
	return cmd
}

func newSnapshotListCmd(e *env) *cobra.Command {
	var acronym string
	var includeDeleted bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List every known snapshot for a network",
		RunE: func(cmd *cobra.Command, args []string) error {
			ids, err := discoverSnapshotIDs(e.fs, e.cfg.Store.BasePath, acronym)
			if err != nil {
				return err
			}

			t := table.NewWriter()
			t.SetOutputMirror(cmd.OutOrStdout())
			t.AppendHeader(table.Row{"ID", "Status", "IndexStatus", "Size", "ValidSize", "TransformedSize", "Deleted"})
			for _, id := range ids {
				meta, err := snapshotstore.ReadMetadataJSON(e.fs, e.cfg.Store.BasePath, acronym, id)
				if err != nil {
					continue
				}
				if meta.Deleted && !includeDeleted {
					continue
				}
				t.AppendRow(table.Row{meta.ID, meta.Status, meta.IndexStatus, meta.Size, meta.ValidSize, meta.TransformedSize, meta.Deleted})
			}
			t.Render()
			return nil
		},
	}
	cmd.Flags().StringVar(&acronym, "acronym", "", "network acronym")
	cmd.Flags().BoolVar(&includeDeleted, "include-deleted", false, "include logically deleted snapshots")
	cmd.MarkFlagRequired("acronym")
	return cmd
}

func newSnapshotShowCmd(e *env) *cobra.Command {
	var acronym string
	var id int64

	cmd := &cobra.Command{
		Use:   "show",
		Short: "Show the full metadata row of a single snapshot",
		RunE: func(cmd *cobra.Command, args []string) error {
			meta, err := snapshotstore.ReadMetadataJSON(e.fs, e.cfg.Store.BasePath, acronym, id)
			if err != nil {
				return err
			}

			t := table.NewWriter()
			t.SetOutputMirror(cmd.OutOrStdout())
			t.AppendRow(table.Row{"ID", meta.ID})
			t.AppendRow(table.Row{"Network", fmt.Sprintf("%s (#%d)", meta.Network.Acronym, meta.Network.ID)})
			t.AppendRow(table.Row{"Status", meta.Status})
			t.AppendRow(table.Row{"IndexStatus", meta.IndexStatus})
			t.AppendRow(table.Row{"StartTime", meta.StartTime})
			t.AppendRow(table.Row{"EndTime", meta.EndTime})
			t.AppendRow(table.Row{"Size", meta.Size})
			t.AppendRow(table.Row{"ValidSize", meta.ValidSize})
			t.AppendRow(table.Row{"TransformedSize", meta.TransformedSize})
			t.AppendRow(table.Row{"Deleted", meta.Deleted})
			if meta.PreviousSnapshotID != nil {
				t.AppendRow(table.Row{"PreviousSnapshotID", *meta.PreviousSnapshotID})
			}
			t.Render()
			return nil
		},
	}
	cmd.Flags().StringVar(&acronym, "acronym", "", "network acronym")
	cmd.Flags().Int64Var(&id, "id", 0, "snapshot id")
	cmd.MarkFlagRequired("acronym")
	cmd.MarkFlagRequired("id")
	return cmd
}
