// Package version exposes build-time version information for the cubelens
// binary. The variables are overridden via -ldflags at release time.
package version

// Build information, set by the linker.
var (
	// Version is the semantic version of the build.
	Version = "dev"
	// Commit is the Git commit the binary was built from.
	Commit = "none"
	// Date is the build timestamp.
	Date = "unknown"
)
