package buildinfo

import (
	"fmt"
	"runtime/debug"
)

// Version returns the module version or "dev" when unset.
func Version() string {
	info, ok := debug.ReadBuildInfo()
	if !ok || info == nil {
		return "dev"
	}
	version := info.Main.Version
	if version == "" || version == "(devel)" {
		return "dev"
	}
	return version
}

// VersionWithTags appends the GOFLAGS build tags when any were recorded at
// compile time.
func VersionWithTags() string {
	version := Version()
	info, ok := debug.ReadBuildInfo()
	if !ok || info == nil {
		return version
	}
	for _, setting := range info.Settings {
		if setting.Key == "-tags" && setting.Value != "" {
			return fmt.Sprintf("%s (tags: %s)", version, setting.Value)
		}
	}
	return version
}
