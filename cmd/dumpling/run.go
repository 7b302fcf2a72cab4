package main

import (
	"github.com/aretw0/dumpling"
	"github.com/aretw0/dumpling/internal/presentation/tui"
	"github.com/aretw0/dumpling/pkg/runner"
	"github.com/spf13/cobra"
)

type runOptions struct {
	sessionID string
	headless  bool
	yes       bool
	noBanner  bool
	wordWrap  int
}

func newRunCmd(a *app) *cobra.Command {
	var opts runOptions
	cmd := &cobra.Command{
		Use:   "run [session-id]",
		Short: "Walk the wizard in the terminal",
		Long: `Starts an interactive wizard session. Progress is stored after every command,
so running again with the same session id resumes where you stopped.

In headless mode frames are written as JSON lines and deliveries are approved
without asking.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) > 0 {
				opts.sessionID = args[0]
			}
			return a.run(cmd, opts)
		},
	}

	cmd.Flags().BoolVar(&opts.headless, "headless", false, "JSON frames on stdout, no prompts")
	cmd.Flags().BoolVar(&opts.headless, "json", false, "alias of --headless")
	cmd.Flags().BoolVarP(&opts.yes, "yes", "y", false, "deliver without asking for confirmation")
	cmd.Flags().BoolVar(&opts.noBanner, "no-banner", false, "skip the banner")
	cmd.Flags().IntVar(&opts.wordWrap, "wrap", 80, "word wrap of rendered cards")
	return cmd
}

func (a *app) run(cmd *cobra.Command, opts runOptions) error {
	in := cmd.InOrStdin()
	out := cmd.OutOrStdout()

	// Printed cards would corrupt the JSON stream.
	printOut := out
	if opts.headless {
		printOut = cmd.ErrOrStderr()
	}

	wiz, closeBackend, err := a.wizard(printOut)
	if err != nil {
		return err
	}
	defer closeBackend()

	var handler runner.IOHandler
	if opts.headless {
		handler = runner.NewJSONHandler(in, out)
	} else {
		var textOpts []runner.TextHandlerOption
		if runner.IsTerminal(in) {
			if !opts.noBanner {
				tui.PrintBanner(out, dumpling.Version)
			}
			render, err := tui.NewRenderer(opts.wordWrap)
			if err != nil {
				a.logger.Warn("markdown renderer unavailable, using plain text", "err", err)
			} else {
				textOpts = append(textOpts, runner.WithTextHandlerRenderer(render))
			}
		}
		handler = runner.NewTextHandler(in, out, textOpts...)
	}

	runOpts := []runner.Option{
		runner.WithLogger(a.logger),
		runner.WithSessionID(opts.sessionID),
		runner.WithHeadless(opts.headless),
		runner.WithHandler(handler),
	}
	if opts.yes {
		runOpts = append(runOpts, runner.WithPolicy(runner.AutoApprovePolicy()))
	}

	state, err := runner.NewRunner(wiz, runOpts...).Run(cmd.Context())
	if err != nil {
		return err
	}
	if state != nil {
		a.logger.Info("session closed", "session_id", state.SessionID, "status", state.Status)
	}
	return nil
}
