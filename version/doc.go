// Package version reports the jobgraph build.
//
// Version, commit and build time are set at link time:
//
//	go build -ldflags "-X github.com/kbukum/jobgraph/version.Version=1.2.0" ./cmd/jobgraph
//
// Missing values fall back to the VCS stamp in the binary's build info.
package version
