package plugin

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/dataplane-io/datahealth/internal/checks"
)

// NamePrefix is the filename prefix that marks an executable as a plugin.
// The check name is everything after the prefix.
const NamePrefix = "datahealth-check-"

// Discover scans dir for plugin executables and returns them as checks,
// sorted by check name. Non-executable files and subdirectories are skipped.
func Discover(dir string, opts ...Option) ([]checks.Check, error) {
	absDir, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("resolving plugin directory: %w", err)
	}

	entries, err := os.ReadDir(absDir)
	if err != nil {
		return nil, fmt.Errorf("reading plugin directory: %w", err)
	}

	var found []checks.Check
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasPrefix(entry.Name(), NamePrefix) {
			continue
		}
		name := strings.TrimPrefix(entry.Name(), NamePrefix)
		if name == "" {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			return nil, fmt.Errorf("inspecting plugin %s: %w", entry.Name(), err)
		}
		if !info.Mode().IsRegular() || info.Mode().Perm()&0o111 == 0 {
			slog.Debug("Skipping non-executable plugin candidate", "path", filepath.Join(absDir, entry.Name()))
			continue
		}
		found = append(found, NewExecCheck(name, filepath.Join(absDir, entry.Name()), opts...))
	}

	sort.Slice(found, func(i, j int) bool { return found[i].Name() < found[j].Name() })
	return found, nil
}
