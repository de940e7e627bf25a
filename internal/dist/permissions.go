package dist

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/edaniels/golog"

	"ideadep/internal/coords"
)

// Zip archives do not preserve POSIX executable bits, which leaves several
// native helpers bundled with the Rider distribution unusable after
// extraction. The allow-list below is deliberately fixed: marking anything
// outside it executable would silently change unrelated files.
var (
	executableExtensions = map[string]struct{}{
		".sh":    {},
		".py":    {},
		".dylib": {},
		".so":    {},
	}
	executableNames = map[string]struct{}{
		"dotnet":      {},
		"env-wrapper": {},
		"mono-sgen":   {},
		"mono-sgen64": {},
		"printenv":    {},
		"restorer":    {},
	}
)

// RestoreExecutables walks an extracted tree and restores the executable bit
// on known native helpers and scripts. It applies only to the Rider
// distribution on hosts where archive permissions are not preserved; failures
// are logged and never abort the caller.
func RestoreExecutables(logger golog.Logger, root string, platformType coords.PlatformType) {
	if platformType != coords.TypeRider || runtime.GOOS == "windows" {
		return
	}

	err := filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !needsExecutableBit(d.Name()) {
			return nil
		}
		if chmodErr := os.Chmod(path, 0o755); chmodErr != nil {
			logger.Warnw("cannot restore executable bit", "path", path, "error", chmodErr)
		}
		return nil
	})
	if err != nil {
		logger.Warnw("permission fixup walk failed", "root", root, "error", err)
	}
}

func needsExecutableBit(name string) bool {
	if _, ok := executableNames[name]; ok {
		return true
	}
	ext := strings.ToLower(filepath.Ext(name))
	_, ok := executableExtensions[ext]
	return ok
}
