package cli

import (
	"github.com/spf13/cobra"
)

var localSourcesFile string

func newLocalCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "local <path>",
		Short: "Expose an already extracted platform directory as a dependency",
		Args:  cobra.ExactArgs(1),
		RunE:  runLocal,
	}

	cmd.Flags().StringVar(&localSourcesFile, "sources-file", "", "Sources archive to attach to the local dependency")

	return cmd
}

func runLocal(cmd *cobra.Command, args []string) error {
	rc, err := newRunContext()
	if err != nil {
		return err
	}

	dep, err := rc.resolver.ResolveLocal(cmd.Context(), args[0], localSourcesFile)
	if err != nil {
		return err
	}

	return printDependency(cmd, dep, "")
}
