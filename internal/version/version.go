package version

import (
	"fmt"
	"runtime"
	"runtime/debug"
	"strings"
	"time"
)

const (
	devVersion      = "0.3.0-dev"
	defaultRevision = "HEAD"
)

// Overridden via ldflags on release builds. Dev builds fall back to
// the Go build metadata resolved in init.
var (
	AppName   = "RegionSync"
	Version   = devVersion
	Revision  = defaultRevision
	BuildDate = ""
)

// Short returns `version (revision)` - e.g. `0.3.0 (5e23a4)`.
func Short() string {
	return fmt.Sprintf("%s (%s)", Version, Revision)
}

// ShortWithApp prefixes Short with the application name.
func ShortWithApp() string {
	return fmt.Sprintf("%s %s", AppName, Short())
}

// Detailed adds the toolchain, platform and build date -
// e.g. `0.3.0 (5e23a4; go1.23.6; linux/amd64; 2026-01-02T03:04:05Z)`.
func Detailed() string {
	return fmt.Sprintf("%s (%s; %s; %s/%s; %s)",
		Version, Revision, runtime.Version(), runtime.GOOS, runtime.GOARCH, BuildDate)
}

// DetailedWithApp prefixes Detailed with the application name.
func DetailedWithApp() string {
	return fmt.Sprintf("%s %s", AppName, Detailed())
}

// applyBuildInfo fills in whatever ldflags left at defaults. The module
// version wins over the dev placeholder, the VCS revision replaces HEAD,
// and a locally modified tree gets a -dirty suffix.
func applyBuildInfo(mainVersion string, settings map[string]string) {
	if (Version == devVersion || Version == "") &&
		mainVersion != "" && mainVersion != "(devel)" {
		Version = strings.TrimPrefix(mainVersion, "v")
	}

	if Revision == defaultRevision || Revision == "" {
		if rev := settings["vcs.revision"]; rev != "" {
			Revision = rev
			if settings["vcs.modified"] == "true" {
				Revision += "-dirty"
			}
		}
	}

	if BuildDate == "" {
		BuildDate = settings["vcs.time"]
	}
}

func resolveFromBuildInfo() {
	info, ok := debug.ReadBuildInfo()
	if !ok || info == nil {
		return
	}

	settings := make(map[string]string, len(info.Settings))
	for _, s := range info.Settings {
		settings[s.Key] = s.Value
	}
	applyBuildInfo(info.Main.Version, settings)
}

func init() {
	resolveFromBuildInfo()
	if BuildDate == "" {
		BuildDate = time.Now().UTC().Format(time.RFC3339)
	}
}
