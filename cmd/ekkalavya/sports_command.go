package main

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/debashis65/EkkalavyaAI-sub002/internal/pose"
	"github.com/debashis65/EkkalavyaAI-sub002/internal/sport"
	"github.com/debashis65/EkkalavyaAI-sub002/internal/store"
)

func newSportsCommand(ctx *commandContext) *cobra.Command {
	var jsonOutput bool

	sportsCmd := &cobra.Command{
		Use:   "sports",
		Short: "List the sports that can be analyzed",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(st *store.Store) error {
				reg, err := ctx.registry(st)
				if err != nil {
					return err
				}
				if jsonOutput {
					return writeJSON(cmd, reg.Profiles())
				}

				rows := make([][]string, 0, reg.Count())
				for _, p := range reg.Profiles() {
					rows = append(rows, []string{
						p.Name,
						string(p.Rule),
						jointList(p.KeyJoints),
						strings.Join(p.Metrics, ", "),
					})
				}
				fmt.Fprintln(cmd.OutOrStdout(), renderTable(
					[]string{"Sport", "Rule", "Key joints", "Metrics"},
					rows,
					nil,
				))
				return nil
			})
		},
	}
	sportsCmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")

	sportsCmd.AddCommand(newSportsShowCommand(ctx))
	sportsCmd.AddCommand(newSportsAddCommand(ctx))
	sportsCmd.AddCommand(newSportsRemoveCommand(ctx))

	return sportsCmd
}

func newSportsShowCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "show <sport>",
		Short: "Print a sport profile as TOML",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(st *store.Store) error {
				reg, err := ctx.registry(st)
				if err != nil {
					return err
				}
				p, err := reg.ConfigFor(args[0])
				if err != nil {
					return err
				}
				data, err := p.Encode()
				if err != nil {
					return err
				}
				_, err = cmd.OutOrStdout().Write(data)
				return err
			})
		},
	}
}

func newSportsAddCommand(ctx *commandContext) *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Store a custom sport profile",
		Long: `Store a custom sport profile from a TOML file.

The file holds a single profile table (name, rule, key_joints, metrics,
optimal_angles, checks). A stored profile with the name of a built-in sport
replaces the built-in one.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if strings.TrimSpace(file) == "" {
				return errors.New("--file is required")
			}
			data, err := os.ReadFile(file)
			if err != nil {
				return fmt.Errorf("read profile: %w", err)
			}
			profile, err := sport.ParseProfile(data)
			if err != nil {
				return err
			}

			return ctx.withStore(func(st *store.Store) error {
				if err := st.Profiles().Upsert(profile); err != nil {
					return fmt.Errorf("store profile: %w", err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Stored profile %s (rule %s)\n", profile.Name, profile.Rule)
				return nil
			})
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "", "Profile TOML file")
	return cmd
}

func newSportsRemoveCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "remove <sport>",
		Short: "Delete a stored sport profile",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := sport.NormalizeName(args[0])
			return ctx.withStore(func(st *store.Store) error {
				if err := st.Profiles().Delete(name); err != nil {
					if errors.Is(err, store.ErrNotFound) {
						return fmt.Errorf("no stored profile named %q", name)
					}
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Removed profile %s\n", name)
				return nil
			})
		},
	}
}

func jointList(joints []pose.Joint) string {
	names := make([]string, len(joints))
	for i, j := range joints {
		names[i] = string(j)
	}
	return strings.Join(names, ", ")
}
