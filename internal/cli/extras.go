package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

func newExtrasCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "extras <version> <name>...",
		Short: "Resolve supplementary artifacts without a main distribution",
		Args:  cobra.MinimumNArgs(2),
		RunE:  runExtras,
	}
}

func runExtras(cmd *cobra.Command, args []string) error {
	rc, err := newRunContext()
	if err != nil {
		return err
	}

	version, names := args[0], args[1:]
	extras, err := rc.resolver.ResolveExtras(cmd.Context(), version, names)
	if err != nil {
		return err
	}

	if outputJSON {
		views := make([]extraView, 0, len(extras))
		for _, extra := range extras {
			views = append(views, extraView{
				Name:    extra.Name,
				Version: extra.Version,
				Path:    extra.Path,
				Jars:    extra.JarFiles,
			})
		}
		encoder := json.NewEncoder(cmd.OutOrStdout())
		encoder.SetIndent("", "  ")
		return encoder.Encode(views)
	}

	if len(extras) == 0 {
		cmd.Println("no extras resolved")
	}
	for _, extra := range extras {
		cmd.Printf("%s %s: %s (%d jars)\n", extra.Name, extra.Version, extra.Path, len(extra.JarFiles))
	}
	if len(extras) < len(names) {
		return fmt.Errorf("resolved %d of %d requested extras", len(extras), len(names))
	}
	return nil
}
