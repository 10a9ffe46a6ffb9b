// Package deps reports the availability of external binaries the pipeline
// shells out to.
package deps

import (
	"fmt"
	"os/exec"
	"strings"

	"tilefetch/internal/config"
)

// Requirement defines an external dependency tilefetch relies on.
type Requirement struct {
	Name        string
	Command     string
	Description string
	Optional    bool
}

// Status reports the availability of a dependency.
type Status struct {
	Name        string
	Command     string
	Description string
	Optional    bool
	Available   bool
	Detail      string
}

// Requirements lists the external binaries for the given configuration.
func Requirements(cfg *config.Config) []Requirement {
	requirements := []Requirement{
		{
			Name:        "Chrome",
			Command:     resolveBrowser(cfg.Portal.BrowserBinary),
			Description: "Required for driving the download portal",
		},
	}
	if cfg.Conversion.Enabled {
		requirements = append(requirements, Requirement{
			Name:        "GDAL",
			Command:     cfg.Conversion.GDALBinary,
			Description: "Required for cloud-optimized GeoTIFF conversion",
		})
	}
	return requirements
}

// CheckBinaries evaluates the provided requirements and reports availability.
func CheckBinaries(requirements []Requirement) []Status {
	results := make([]Status, 0, len(requirements))
	for _, req := range requirements {
		cmd := strings.TrimSpace(req.Command)
		status := Status{
			Name:        req.Name,
			Command:     cmd,
			Description: strings.TrimSpace(req.Description),
			Optional:    req.Optional,
		}
		if cmd == "" {
			status.Detail = "command not configured"
			results = append(results, status)
			continue
		}
		if _, err := exec.LookPath(cmd); err != nil {
			status.Detail = fmt.Sprintf("binary %q not found", cmd)
			results = append(results, status)
			continue
		}
		status.Available = true
		results = append(results, status)
	}
	return results
}

// resolveBrowser falls back through the common Chrome binary names when no
// explicit path is configured.
func resolveBrowser(configured string) string {
	if strings.TrimSpace(configured) != "" {
		return configured
	}
	for _, candidate := range []string{"google-chrome", "chromium", "chromium-browser"} {
		if _, err := exec.LookPath(candidate); err == nil {
			return candidate
		}
	}
	return "google-chrome"
}
