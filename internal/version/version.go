// Package version provides version information for the binary.
package version

import "fmt"

// Name is the MCP implementation name announced to clients.
const Name = "tellermcp"

// Version is the current version of the application.
// This is set at build time using -ldflags.
var Version = "0.1.0"

// BuildTime is when the binary was built.
// This is set at build time using -ldflags.
var BuildTime = "unknown"

// String returns the formatted version information.
func String() string {
	return fmt.Sprintf("%s version %s (built %s)", Name, Version, BuildTime)
}
