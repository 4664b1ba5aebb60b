// Package version holds build metadata injected with -ldflags, e.g.
//
//	go build -ldflags "-X github.com/fbz-tec/pggeojson/internal/version.AppVersion=v1.2.0"
package version

var (
	AppVersion = "dev"
	BuildTime  = "unknown"
	GitCommit  = "none"
)
