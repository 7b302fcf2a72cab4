package main

import (
	"errors"
	"fmt"

	"github.com/aretw0/dumpling/internal/presentation/graph"
	"github.com/aretw0/dumpling/pkg/catalog"
	"github.com/aretw0/dumpling/pkg/domain"
	"github.com/spf13/cobra"
)

func newCatalogCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "catalog",
		Short: "Inspect the step catalog",
		Long: `Validate, print or draw the step catalog. Without --catalog the embedded
dumpling catalog is used.`,
	}

	var sessionID string
	graphCmd := &cobra.Command{
		Use:   "graph",
		Short: "Export the step sequence as a Mermaid diagram",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := a.cfg.LoadCatalog()
			if err != nil {
				return err
			}

			var overlay *graph.Overlay
			if sessionID != "" {
				wiz, closeBackend, err := a.wizard(nil)
				if err != nil {
					return err
				}
				defer closeBackend()

				state, err := wiz.Load(cmd.Context(), sessionID)
				if err != nil {
					return fmt.Errorf("failed to load session %q: %w", sessionID, err)
				}
				overlay = graph.OverlayFor(c, state.Position)
			}
			fmt.Fprint(cmd.OutOrStdout(), graph.GenerateMermaid(c, overlay))
			return nil
		},
	}
	graphCmd.Flags().StringVar(&sessionID, "session", "", "highlight the progress of a stored session")

	cmd.AddCommand(
		&cobra.Command{
			Use:   "validate [file]",
			Short: "Check a catalog file for consistency",
			Long:  `Reports every invalid field, duplicate step id or option, and custom option missing from its question.`,
			Args:  cobra.MaximumNArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				var (
					c   *domain.Catalog
					err error
				)
				if len(args) > 0 {
					c, err = catalog.Load(args[0])
				} else {
					c, err = a.cfg.LoadCatalog()
				}

				var verr *catalog.ValidationError
				if errors.As(err, &verr) {
					out := cmd.OutOrStdout()
					for _, issue := range verr.Issues {
						fmt.Fprintln(out, "- "+issue)
					}
					return fmt.Errorf("validation failed with %d issue(s)", len(verr.Issues))
				}
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Catalog is valid: %d intro cards, %d content steps\n",
					c.IntroCount(), c.ContentCount())
				return nil
			},
		},
		&cobra.Command{
			Use:   "show",
			Short: "Print the catalog as JSON",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				c, err := a.cfg.LoadCatalog()
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), c)
			},
		},
		graphCmd,
	)
	return cmd
}
