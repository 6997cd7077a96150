package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/debashis65/EkkalavyaAI-sub002/internal/biomech"
	"github.com/debashis65/EkkalavyaAI-sub002/internal/pose"
	"github.com/debashis65/EkkalavyaAI-sub002/internal/store"
)

func newPoseCommand(ctx *commandContext) *cobra.Command {
	var sportName string
	var file string
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "pose",
		Short: "Score a landmark snapshot for a sport",
		Long: `Score a landmark snapshot for a sport.

The snapshot is a JSON object keyed by joint name, for example
{"RIGHT_SHOULDER": {"x": 0.6, "y": 0.3, "visibility": 0.9}}.
Use --file - to read it from stdin.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			if strings.TrimSpace(file) == "" {
				return errors.New("--file is required")
			}
			if sportName == "" {
				sportName = cfg.Analysis.Sport
			}

			data, err := readInput(cmd, file)
			if err != nil {
				return fmt.Errorf("read landmarks: %w", err)
			}
			landmarks, err := pose.ParseLandmarks(data)
			if err != nil {
				return err
			}
			landmarks = landmarks.FilterVisible(cfg.Pose.MinVisibility)

			return ctx.withStore(func(st *store.Store) error {
				reg, err := ctx.registry(st)
				if err != nil {
					return err
				}
				analyzer, err := biomech.NewAnalyzer(reg)
				if err != nil {
					return err
				}
				result, err := analyzer.Analyze(landmarks, sportName)
				if err != nil {
					return err
				}
				if jsonOutput {
					return writeJSON(cmd, result)
				}
				printMotionResult(cmd.OutOrStdout(), result)
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&sportName, "sport", "s", "", "Sport to score (defaults to analysis.sport)")
	cmd.Flags().StringVarP(&file, "file", "f", "", "Landmark JSON file, or - for stdin")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")
	return cmd
}

func readInput(cmd *cobra.Command, path string) ([]byte, error) {
	if path == "-" {
		return io.ReadAll(cmd.InOrStdin())
	}
	return os.ReadFile(path)
}

func printMotionResult(out io.Writer, result *biomech.Result) {
	colorize := shouldColorize(out)
	fmt.Fprintln(out, renderStatusLine(result.Sport, scoreKind(result.Score), fmt.Sprintf("score %.1f", result.Score), colorize))

	names := make([]string, 0, len(result.Metrics)+len(result.JointAngles))
	for name := range result.Metrics {
		names = append(names, name)
	}
	slices.Sort(names)
	rows := make([][]string, 0, len(names))
	for _, name := range names {
		rows = append(rows, []string{name, fmt.Sprintf("%.1f", result.Metrics[name])})
	}

	angles := make([]string, 0, len(result.JointAngles))
	for name := range result.JointAngles {
		angles = append(angles, name)
	}
	slices.Sort(angles)
	for _, name := range angles {
		rows = append(rows, []string{name + " (deg)", fmt.Sprintf("%.1f", result.JointAngles[name])})
	}

	if len(rows) > 0 {
		fmt.Fprintln(out, renderTable([]string{"Measure", "Value"}, rows, []columnAlignment{alignLeft, alignRight}))
	}
	for _, line := range result.Feedback {
		fmt.Fprintf(out, "%s- %s\n", statusIndent, line)
	}
}
