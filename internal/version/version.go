// Package version exposes build metadata stamped into the verifier binaries.
package version

import (
	"fmt"
	"os"
	"sync"

	"github.com/google/uuid"
)

// Set via -ldflags "-X deployverify/internal/version.Version=..." and friends.
var (
	Version   = "unknown"
	BuildDate = "unknown"
	GitCommit = "unknown"
)

// Info holds build metadata and runtime identity.
type Info struct {
	Version    string `json:"version"`
	GitCommit  string `json:"git_commit"`
	BuildDate  string `json:"build_date"`
	InstanceID string `json:"instance_id"`
	Hostname   string `json:"hostname"`
}

var (
	once sync.Once
	info Info
)

// GetInfo returns the build metadata. The instance id identifies one process
// (one Lambda execution environment) and is generated once.
func GetInfo() Info {
	once.Do(func() {
		info = Info{
			Version:    Version,
			GitCommit:  GitCommit,
			BuildDate:  BuildDate,
			InstanceID: uuid.NewString(),
			Hostname:   hostname(),
		}
	})
	return info
}

func hostname() string {
	// Lambda does not expose a meaningful hostname.
	if fn := os.Getenv("AWS_LAMBDA_FUNCTION_NAME"); fn != "" {
		return fn
	}
	h, err := os.Hostname()
	if err != nil {
		return "unknown"
	}
	return h
}

func (i Info) String() string {
	return fmt.Sprintf("deployverify %s (commit: %s, built: %s)", i.Version, i.GitCommit, i.BuildDate)
}
