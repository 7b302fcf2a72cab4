package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/aretw0/dumpling/internal/config"
	"github.com/aretw0/dumpling/pkg/domain"
	"github.com/spf13/cobra"
)

func newSessionCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "session",
		Short: "Manage stored sessions",
		Long: `List, inspect and remove the sessions kept by the configured store.
The memory store forgets everything between runs, so use --store file or redis.`,
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "ls",
			Short: "List stored sessions",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				a.warnMemoryStore()
				wiz, closeBackend, err := a.wizard(nil)
				if err != nil {
					return err
				}
				defer closeBackend()

				ids, err := wiz.List(cmd.Context())
				if err != nil {
					return fmt.Errorf("failed to list sessions: %w", err)
				}
				out := cmd.OutOrStdout()
				if len(ids) == 0 {
					fmt.Fprintln(out, "No sessions found.")
					return nil
				}
				fmt.Fprintln(out, "Sessions:")
				for _, id := range ids {
					fmt.Fprintln(out, "- "+id)
				}
				return nil
			},
		},
		&cobra.Command{
			Use:   "show <session-id>",
			Short: "Print the state and view of a session as JSON",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				wiz, closeBackend, err := a.wizard(nil)
				if err != nil {
					return err
				}
				defer closeBackend()

				state, err := wiz.Load(cmd.Context(), args[0])
				if err != nil {
					return fmt.Errorf("failed to load session %q: %w", args[0], err)
				}
				return printJSON(cmd.OutOrStdout(), struct {
					State *domain.State `json:"state"`
					View  domain.View   `json:"view"`
				}{state, wiz.ViewOf(state)})
			},
		},
		&cobra.Command{
			Use:   "recipes <session-id>",
			Short: "Print the recipes saved for a session (kept across runs by the redis store)",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				wiz, closeBackend, err := a.wizard(nil)
				if err != nil {
					return err
				}
				defer closeBackend()

				recipes, err := wiz.Recipes(cmd.Context(), args[0])
				if err != nil {
					return fmt.Errorf("failed to read recipes: %w", err)
				}
				if len(recipes) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "No saved recipes.")
					return nil
				}
				return printJSON(cmd.OutOrStdout(), recipes)
			},
		},
		&cobra.Command{
			Use:   "rm <session-id>...",
			Short: "Remove one or more sessions",
			Args:  cobra.MinimumNArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				wiz, closeBackend, err := a.wizard(nil)
				if err != nil {
					return err
				}
				defer closeBackend()

				var errs []error
				for _, id := range args {
					if err := wiz.Delete(cmd.Context(), id); err != nil {
						errs = append(errs, fmt.Errorf("failed to remove %q: %w", id, err))
						continue
					}
					fmt.Fprintf(cmd.OutOrStdout(), "Removed session %q\n", id)
				}
				return errors.Join(errs...)
			},
		},
	)
	return cmd
}

func (a *app) warnMemoryStore() {
	if a.cfg.Store == config.StoreMemory {
		a.logger.Warn("the memory store keeps nothing between runs")
	}
}

func printJSON(w io.Writer, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal: %w", err)
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}
