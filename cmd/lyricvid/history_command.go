package main

import (
	"fmt"
	"path/filepath"
	"strconv"

	"github.com/spf13/cobra"

	"lyricvid/internal/history"
)

func newHistoryCommand(ctx *commandContext) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List past renders",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withHistory(func(store *history.Store) error {
				runs, err := store.List(cmd.Context(), limit)
				if err != nil {
					return fmt.Errorf("list renders: %w", err)
				}
				out := cmd.OutOrStdout()
				if len(runs) == 0 {
					fmt.Fprintln(out, "No renders recorded")
					return nil
				}
				fmt.Fprintln(out, renderTable(
					[]string{"Started", "Status", "Output", "Images", "Failed", "Audio", "Elapsed"},
					historyRows(runs),
					[]columnAlignment{alignLeft, alignLeft, alignLeft, alignRight, alignRight, alignRight, alignRight},
				))
				return nil
			})
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Maximum number of renders to show")
	return cmd
}

func historyRows(runs []history.Run) [][]string {
	rows := make([][]string, 0, len(runs))
	for _, run := range runs {
		rows = append(rows, []string{
			run.StartedAt.Local().Format("2006-01-02 15:04"),
			string(run.Status),
			filepath.Base(run.OutputPath),
			fmt.Sprintf("%d/%d", run.ImagesFetched, run.ImagesPlanned),
			strconv.Itoa(run.ImagesFailed),
			formatSeconds(run.AudioSeconds),
			formatElapsed(run.Elapsed()),
		})
	}
	return rows
}
