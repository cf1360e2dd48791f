package main

import (
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/lareferencia/lareferencia-core-lib-sub002/catalog"
)

func newCatalogCmd(e *env) *cobra.Command {
	cmd := &cobra.Command{Use: "catalog", Short: "Inspect a snapshot's record catalog"}
	cmd.AddCommand(newCatalogIterateCmd(e))
	return cmd
}

func newCatalogIterateCmd(e *env) *cobra.Command {
	var acronym string
	var snapshotID int64

	cmd := &cobra.Command{
		Use:   "iterate",
		Short: "Print every catalog row for a snapshot",
		RunE: func(cmd *cobra.Command, args []string) error {
			it, err := catalog.NewIterator(e.fs, e.cfg.Store.BasePath, acronym, snapshotID)
			if err != nil {
				return err
			}

			t := table.NewWriter()
			t.SetOutputMirror(cmd.OutOrStdout())
			t.AppendHeader(table.Row{"ID", "Identifier", "Datestamp", "Deleted"})
			for {
				r, ok := it.Next()
				if !ok {
					break
				}
				t.AppendRow(table.Row{r.ID, r.Identifier, r.Datestamp, r.Deleted})
			}
			if err := it.Err(); err != nil {
				return err
			}
			t.Render()
			return nil
		},
	}
	cmd.Flags().StringVar(&acronym, "acronym", "", "network acronym")
	cmd.Flags().Int64Var(&snapshotID, "snapshot-id", 0, "snapshot id")
	cmd.MarkFlagRequired("acronym")
	cmd.MarkFlagRequired("snapshot-id")
	return cmd
}
