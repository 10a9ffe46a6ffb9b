// Package preflight validates the environment before a batch run: required
// directories, disk headroom, external binaries, the tile index, and portal
// reachability.
package preflight

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"golang.org/x/sys/unix"

	"tilefetch/internal/config"
	"tilefetch/internal/deps"
	"tilefetch/internal/tilegrid"
)

// minFreeBytes is the headroom required under the output directory. National
// programme tiles run to a few hundred megabytes each.
const minFreeBytes = 2 << 30

// Result reports the outcome of a single preflight check.
type Result struct {
	Name   string
	Passed bool
	Detail string
}

// RunAll executes all applicable preflight checks for the given config.
func RunAll(ctx context.Context, cfg *config.Config) []Result {
	if cfg == nil {
		return nil
	}

	var results []Result

	results = append(results, CheckGrid(cfg.Paths.GridPath, cfg.Paths.GridNameProperty))
	results = append(results, CheckDirectoryAccess("Output directory", cfg.Paths.OutputDir))
	results = append(results, CheckDirectoryAccess("Scratch directory", cfg.Paths.ScratchDir))
	results = append(results, CheckFreeSpace(cfg.Paths.OutputDir))
	results = append(results, CheckPortal(ctx, cfg.Portal.URL))

	for _, status := range deps.CheckBinaries(deps.Requirements(cfg)) {
		results = append(results, Result{
			Name:   status.Name,
			Passed: status.Available || status.Optional,
			Detail: binaryDetail(status),
		})
	}
	return results
}

// CheckGrid verifies the tile index loads and is non-empty.
func CheckGrid(path, nameProperty string) Result {
	const name = "Tile index"
	index, err := tilegrid.Load(path, nameProperty)
	if err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: %v)", path, err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (%d tiles)", path, index.Len())}
}

// CheckDirectoryAccess verifies that the directory exists and is readable/writable.
func CheckDirectoryAccess(name, path string) Result {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Result{Name: name, Detail: fmt.Sprintf("%s (error: does not exist)", path)}
		}
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: stat: %v)", path, err)}
	}
	if !info.IsDir() {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: is not a directory)", path)}
	}
	if err := unix.Access(path, unix.R_OK|unix.W_OK|unix.X_OK); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: insufficient permissions: %v)", path, err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (read/write ok)", path)}
}

// CheckFreeSpace verifies the filesystem under path has download headroom.
func CheckFreeSpace(path string) Result {
	const name = "Free space"
	var stat unix.Statfs_t
	if err := unix.Statfs(path, &stat); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: statfs: %v)", path, err)}
	}
	free := stat.Bavail * uint64(stat.Bsize)
	detail := fmt.Sprintf("%s (%.1f GiB free)", path, float64(free)/(1<<30))
	if free < minFreeBytes {
		return Result{Name: name, Detail: detail + " below 2 GiB headroom"}
	}
	return Result{Name: name, Passed: true, Detail: detail}
}

// CheckPortal verifies the portal entry point answers HTTP.
func CheckPortal(ctx context.Context, rawURL string) Result {
	const name = "Portal"

	base := strings.TrimSpace(rawURL)
	if base == "" {
		return Result{Name: name, Detail: "missing url"}
	}

	checkCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(checkCtx, http.MethodGet, base, nil)
	if err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("reachability check failed (%v)", err)}
	}
	client := &http.Client{Timeout: 10 * time.Second}
	resp, err := client.Do(req)
	if err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("reachability check failed (%v)", err)}
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 500 {
		return Result{Name: name, Detail: fmt.Sprintf("reachability check failed (%d)", resp.StatusCode)}
	}
	return Result{Name: name, Passed: true, Detail: "Reachable"}
}

func binaryDetail(status deps.Status) string {
	if status.Available {
		return status.Command
	}
	return status.Detail
}
