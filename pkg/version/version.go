// Package version holds the build version of yb.
package version

import "runtime/debug"

// Version is set at build time:
//
//	go build -ldflags "-X github.com/vanderheijden86/yakboard/pkg/version.Version=$(date +%Y%m%d)-$(git rev-parse --short HEAD)"
var Version = "dev"

// readBuildInfo is swapped in tests.
var readBuildInfo = debug.ReadBuildInfo

// String returns Version, or the module version when yb was installed with
// `go install` and no ldflags were given.
func String() string {
	if Version != "dev" {
		return Version
	}
	if info, ok := readBuildInfo(); ok && info.Main.Version != "" && info.Main.Version != "(devel)" {
		return info.Main.Version
	}
	return Version
}
