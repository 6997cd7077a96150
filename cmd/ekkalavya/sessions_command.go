package main

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/debashis65/EkkalavyaAI-sub002/internal/store"
)

func newSessionsCommand(ctx *commandContext) *cobra.Command {
	var limit int

	sessionsCmd := &cobra.Command{
		Use:   "sessions",
		Short: "List recorded training sessions",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(st *store.Store) error {
				sessions, err := st.Sessions().List(limit)
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				if len(sessions) == 0 {
					fmt.Fprintln(out, "No sessions recorded")
					return nil
				}

				rows := make([][]string, 0, len(sessions))
				for _, sess := range sessions {
					latest := "-"
					a, err := st.Sessions().LatestAnalysis(sess.ID)
					switch {
					case err == nil:
						latest = fmt.Sprintf("%.0f", a.Constraints.SafetyScore)
					case !errors.Is(err, store.ErrNotFound):
						return err
					}
					rows = append(rows, []string{
						sess.ID,
						sess.Sport,
						sess.StartedAt.Local().Format(time.DateTime),
						latest,
					})
				}
				fmt.Fprintln(out, renderTable(
					[]string{"ID", "Sport", "Started", "Safety"},
					rows,
					[]columnAlignment{alignLeft, alignLeft, alignLeft, alignRight},
				))
				return nil
			})
		},
	}
	sessionsCmd.Flags().IntVarP(&limit, "limit", "n", 20, "Maximum sessions to list (0 for all)")

	sessionsCmd.AddCommand(newSessionsShowCommand(ctx))
	sessionsCmd.AddCommand(newSessionsRemoveCommand(ctx))
	return sessionsCmd
}

func newSessionsShowCommand(ctx *commandContext) *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "show <session-id>",
		Short: "Show the room analyses recorded for a session",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(st *store.Store) error {
				sess, err := st.Sessions().Get(args[0])
				if err != nil {
					if errors.Is(err, store.ErrNotFound) {
						return fmt.Errorf("session %q not found", args[0])
					}
					return err
				}
				analyses, err := st.Sessions().Analyses(sess.ID)
				if err != nil {
					return err
				}
				if jsonOutput {
					return writeJSON(cmd, analyses)
				}

				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "Session %s (%s), started %s\n", sess.ID, sess.Sport, sess.StartedAt.Local().Format(time.DateTime))
				rows := make([][]string, 0, len(analyses))
				for _, a := range analyses {
					c := a.Constraints
					rows = append(rows, []string{
						strconv.FormatInt(a.ID, 10),
						a.AnalyzedAt.Local().Format(time.TimeOnly),
						yesNo(c.Detected),
						fmt.Sprintf("%.2f x %.2f", c.UsableArea.Width, c.UsableArea.Height),
						fmt.Sprintf("%.0f", c.SafetyScore),
					})
				}
				fmt.Fprintln(out, renderTable(
					[]string{"#", "Time", "Floor", "Usable (m)", "Safety"},
					rows,
					[]columnAlignment{alignRight, alignLeft, alignLeft, alignLeft, alignRight},
				))
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")
	return cmd
}

func newSessionsRemoveCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "remove <session-id>",
		Short: "Delete a session and its analyses",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(st *store.Store) error {
				if err := st.Sessions().Delete(args[0]); err != nil {
					if errors.Is(err, store.ErrNotFound) {
						return fmt.Errorf("session %q not found", args[0])
					}
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Removed session %s\n", args[0])
				return nil
			})
		},
	}
}
