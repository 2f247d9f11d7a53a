package version

import (
	"fmt"
	"runtime"
)

// Product is the name reported by the CLI, the logs and /version.
const Product = "Timeframe"

// Build information, set at build time with
// -ldflags "-X github.com/zsiec/timeframe/pkg/version.Version=..."
var (
	Version   = "dev"
	GitCommit = "unknown"
	BuildTime = "unknown"
)

// Info describes the running binary.
type Info struct {
	Version   string `json:"version"`
	GitCommit string `json:"git_commit"`
	BuildTime string `json:"build_time"`
	GoVersion string `json:"go_version"`
	Platform  string `json:"platform"`
}

func GetInfo() Info {
	return Info{
		Version:   Version,
		GitCommit: GitCommit,
		BuildTime: BuildTime,
		GoVersion: runtime.Version(),
		Platform:  runtime.GOOS + "/" + runtime.GOARCH,
	}
}

func (i Info) String() string {
	return fmt.Sprintf("%s %s (commit: %s, built: %s, go: %s, platform: %s)",
		Product, i.Version, shortCommit(i.GitCommit), i.BuildTime, i.GoVersion, i.Platform)
}

// Short returns the product name and version only.
func (i Info) Short() string {
	return Product + " " + i.Version
}

func shortCommit(c string) string {
	if len(c) > 12 {
		return c[:12]
	}
	return c
}
