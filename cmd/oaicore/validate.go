package main

import (
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/lareferencia/lareferencia-core-lib-sub002/query"
	"github.com/lareferencia/lareferencia-core-lib-sub002/validation"
)

func newValidateCmd(e *env) *cobra.Command {
	cmd := &cobra.Command{Use: "validate", Short: "Inspect a snapshot's validation stats and rule occurrences"}
	cmd.AddCommand(newValidateStatsCmd(e))
	cmd.AddCommand(newValidateOccurrencesCmd(e))
	return cmd
}

func newValidateStatsCmd(e *env) *cobra.Command {
	var acronym string
	var snapshotID int64

	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Print the persisted validation_stats.json for a snapshot",
		RunE: func(cmd *cobra.Command, args []string) error {
			stats, err := validation.LoadStats(e.fs, e.cfg.Store.BasePath, acronym, snapshotID)
			if err != nil {
				return err
			}

			t := table.NewWriter()
			t.SetOutputMirror(cmd.OutOrStdout())
			t.AppendRow(table.Row{"TotalRecords", stats.TotalRecords})
			t.AppendRow(table.Row{"ValidRecords", stats.ValidRecords})
			t.AppendRow(table.Row{"TransformedRecords", stats.TransformedRecords})
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

func newValidateOccurrencesCmd(e *env) *cobra.Command {
	var acronym string
	var snapshotID int64
	var ruleID int64
	var filterExprs []string

	cmd := &cobra.Command{
		Use:   "occurrences",
		Short: "Count valid/invalid occurrences of a single rule across a snapshot",
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
			occ := query.CalculateRuleOccurrences(records, int32(ruleID), filter)

			t := table.NewWriter()
			t.SetOutputMirror(cmd.OutOrStdout())
			t.AppendHeader(table.Row{"Occurrence", "Count"})
			for k, v := range occ.Valid {
				t.AppendRow(table.Row{"valid:" + k, v})
			}
			for k, v := range occ.Invalid {
				t.AppendRow(table.Row{"invalid:" + k, v})
			}
			t.Render()
			return nil
		},
	}
	cmd.Flags().StringVar(&acronym, "acronym", "", "network acronym")
	cmd.Flags().Int64Var(&snapshotID, "snapshot-id", 0, "snapshot id")
	cmd.Flags().Int64Var(&ruleID, "rule-id", 0, "rule id")
	cmd.Flags().StringArrayVar(&filterExprs, "filter", nil, "filter expression, e.g. record_is_valid:true (repeatable)")
	cmd.MarkFlagRequired("acronym")
	cmd.MarkFlagRequired("snapshot-id")
	cmd.MarkFlagRequired("rule-id")
	return cmd
}
