package cli

import (
	"context"
	"fmt"
	"os"
	"sync"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"ideadep/internal/coords"
	"ideadep/internal/descriptor"
	"ideadep/internal/resolve"
	"ideadep/internal/tui"
)

var (
	resolveSources    bool
	resolveExtras     []string
	resolveDescriptor bool
)

func newResolveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "resolve <type> <version>",
		Short: "Download, cache, and expose a platform distribution",
		Args:  cobra.ExactArgs(2),
		RunE:  runResolve,
	}

	cmd.Flags().BoolVar(&resolveSources, "sources", false, "Also resolve the sources artifact when available")
	cmd.Flags().StringSliceVar(&resolveExtras, "extra", nil, "Extra artifact names to resolve at the same version")
	cmd.Flags().BoolVar(&resolveDescriptor, "descriptor", false, "Synthesize the dependency descriptor and print the repository registration")

	return cmd
}

func runResolve(cmd *cobra.Command, args []string) error {
	rc, err := newRunContext()
	if err != nil {
		return err
	}

	req := resolve.Request{
		Type:        coords.PlatformType(args[0]),
		Version:     args[1],
		WantSources: resolveSources,
		Extras:      resolveExtras,
	}

	// Resolve coordinates up front so unsupported types fail before any
	// progress UI starts, and so the progress rows carry real artifact names.
	c, _, err := coords.Resolve(req.Type, req.Version, req.WantSources)
	if err != nil {
		return err
	}

	var dep resolve.ResolvedDependency
	mode := tui.DetectMode(os.Stdout, noProgress, outputJSON)
	if mode == tui.ModeTUI {
		dep, err = runResolveWithProgress(cmd.Context(), rc, req, c)
	} else {
		dep, err = rc.resolver.ResolveRemote(cmd.Context(), req)
	}
	if err != nil {
		return err
	}

	descriptorPath := ""
	if resolveDescriptor {
		descriptorPath, err = writeDescriptor(cmd, rc, dep)
		if err != nil {
			return err
		}
	}

	return printDependency(cmd, dep, descriptorPath)
}

func runResolveWithProgress(ctx context.Context, rc runContext, req resolve.Request, c coords.Coordinates) (resolve.ResolvedDependency, error) {
	model := tui.NewProgressModel(
		fmt.Sprintf("Resolving %s %s", c.ArtifactName, c.Version),
		[]tui.Column{
			{Header: "ARTIFACT", Width: 24},
			{Header: "STATUS", Width: 12},
		},
	)
	model.AddRow(c.ArtifactName, []string{c.ArtifactName, "pending"})
	if c.SourcesAvailable {
		model.AddRow("sources", []string{"sources", "pending"})
	}
	for _, extra := range req.Extras {
		model.AddRow(extra, []string{extra, "pending"})
	}

	var (
		mu  sync.Mutex
		dep resolve.ResolvedDependency
	)
	err := tui.RunWithWork(os.Stdout, model, func(send func(tea.Msg)) {
		rc.resolver.SetReporter(tui.NewResolveReporter(send))
		defer rc.resolver.SetReporter(nil)

		resolved, resolveErr := rc.resolver.ResolveRemote(ctx, req)
		if resolveErr != nil {
			send(tui.ErrorMsg{Err: resolveErr})
			return
		}
		mu.Lock()
		dep = resolved
		mu.Unlock()
	})
	return dep, err
}

func writeDescriptor(cmd *cobra.Command, rc runContext, dep resolve.ResolvedDependency) (string, error) {
	path, err := descriptor.GetOrCreate(dep, rc.paths.DescriptorsDir)
	if err != nil {
		return "", err
	}

	registrar := &descriptor.MemoryRegistrar{}
	reg, err := descriptor.Register(registrar, dep, path)
	if err != nil {
		return "", err
	}

	// The descriptor path itself is part of the dependency view; only the
	// repository patterns are printed here, and only for human output.
	if !outputJSON {
		for _, pattern := range reg.IvyPatterns {
			cmd.Printf("ivy pattern: %s\n", pattern)
		}
		for _, pattern := range reg.ArtifactPatterns {
			cmd.Printf("artifact pattern: %s\n", pattern)
		}
	}
	return path, nil
}
