// Package deps verifies the external tools voice capture depends on. The
// doctor command surfaces its findings before a user hits a confusing
// subprocess failure mid-recording.
package deps

import (
	"fmt"
	"os/exec"
	"strings"

	"taskline/internal/config"
)

// Requirement defines an external binary the client shells out to.
type Requirement struct {
	Name        string
	Command     string
	Description string
	Optional    bool
}

// Status reports the availability of a requirement.
type Status struct {
	Name        string
	Command     string
	Description string
	Optional    bool
	Available   bool
	Detail      string
}

// Required returns the tool requirements for the given configuration. The
// capture binary is mandatory for voice notes; playback is optional and only
// gates the --play flag.
func Required(cfg *config.Config) []Requirement {
	return []Requirement{
		{
			Name:        "Audio capture",
			Command:     cfg.Audio.CaptureBinary,
			Description: "records voice notes from the microphone",
		},
		{
			Name:        "Audio playback",
			Command:     cfg.Audio.PlaybackBinary,
			Description: "replays a capture before upload",
			Optional:    true,
		},
	}
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

// MissingRequired filters statuses down to unavailable mandatory tools.
func MissingRequired(statuses []Status) []Status {
	var missing []Status
	for _, status := range statuses {
		if !status.Available && !status.Optional {
			missing = append(missing, status)
		}
	}
	return missing
}
