// Package version carries the build stamp, set via ldflags at release
// time.
package version

// Build information. Overridden with:
//
//	-ldflags "-X github.com/johnstonskj/tsbind/pkg/version.Version=..."
var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)
