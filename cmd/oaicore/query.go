package main

import (
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/lareferencia/lareferencia-core-lib-sub002/query"
	"github.com/lareferencia/lareferencia-core-lib-sub002/validation"
)

func newQueryCmd(e *env) *cobra.Command {
	cmd := &cobra.Command{Use: "query", Short: "Query a snapshot's validated records"}
	cmd.AddCommand(newQueryPageCmd(e))
	return cmd
}

func newQueryPageCmd(e *env) *cobra.Command {
	var acronym string
	var snapshotID int64
	var offset, limit int
	var filterExprs []string

	cmd := &cobra.Command{
		Use:   "page",
		Short: "Return one filtered, identifier-ordered page of a snapshot's validated records",
		RunE: func(cmd *cobra.Command, args []string) error {
			it, err := validation.NewFullIterator(e.fs, e.cfg.Store.BasePath, acronym, snapshotID)
			if err != nil {
				return err
			}
			records, err := validation.CollectFull(it)
			if err != nil {
				return err
			}

			filter := query.ParseFilters(filterExprs)
			page := query.QueryObservationsWithPagination(records, filter, offset, limit)

			t := table.NewWriter()
			t.SetOutputMirror(cmd.OutOrStdout())
			t.AppendHeader(table.Row{"Identifier", "Datestamp", "Valid", "Transformed"})
			for _, r := range page.Records {
				t.AppendRow(table.Row{r.Identifier, r.Datestamp, r.RecordIsValid, r.IsTransformed})
			}
			t.Render()
			cmd.Printf("total filtered: %d\n", page.TotalFiltered)
			return nil
		},
	}
	cmd.Flags().StringVar(&acronym, "acronym", "", "network acronym")
	cmd.Flags().Int64Var(&snapshotID, "snapshot-id", 0, "snapshot id")
	cmd.Flags().IntVar(&offset, "offset", 0, "page offset")
	cmd.Flags().IntVar(&limit, "limit", 50, "page size")
	cmd.Flags().StringArrayVar(&filterExprs, "filter", nil, "filter expression, e.g. record_is_valid:true (repeatable)")
	cmd.MarkFlagRequired("acronym")
	cmd.MarkFlagRequired("snapshot-id")
	return cmd
}
