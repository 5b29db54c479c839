package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/resuite/retend-sub003/cmd/retend/internal/scenario"
)

// RunOptions holds flags for the run command.
type RunOptions struct {
	*RootOptions
	Trace bool
}

// NewRunCommand creates the run command.
func NewRunCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &RunOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "run <scenario.yaml>",
		Short: "Replay a scenario and print the final host tree",
		Long: `Replay a keyed-list scenario against the in-memory host.

The first step renders the initial list; every following step sets the list
to a new state, driving reconciliation exactly as a live update would. The
final tree is printed. With --trace, the host mutations caused by the update
steps are printed after the tree, one per line.

Examples:
  retend run scenario.yaml
  retend run scenario.yaml --trace`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runScenario(opts, cmd, args[0])
		},
	}

	cmd.Flags().BoolVar(&opts.Trace, "trace", false, "print the update-phase mutation trace")

	return cmd
}

func runScenario(opts *RunOptions, cmd *cobra.Command, path string) error {
	s, err := scenario.Load(path)
	if err != nil {
		return err
	}

	res, err := scenario.Replay(s)
	if err != nil {
		return err
	}

	w := cmd.OutOrStdout()
	fmt.Fprint(w, res.Dump)

	if opts.Trace {
		fmt.Fprintln(w)
		if len(res.Trace) == 0 {
			fmt.Fprintln(w, "(no update mutations)")
			return nil
		}
		for _, line := range res.Trace {
			fmt.Fprintln(w, line)
		}
	}
	if opts.Verbose {
		fmt.Fprintf(w, "\n%d step(s), %d update mutation(s)\n", len(s.Steps), len(res.Trace))
	}

	return nil
}
