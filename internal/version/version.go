package version

import "fmt"

// Set via -ldflags "-X roster/internal/version.Version=... -X roster/internal/version.Commit=...".
var (
	Version = "0.1.0-dev"
	Commit  = ""
)

func String() string {
	if Commit == "" {
		return "roster " + Version
	}
	return fmt.Sprintf("roster %s (%s)", Version, Commit)
}
