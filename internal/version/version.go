// Package version provides the build version string.
package version

// Version is the current version of the automation.
// Set at build time via ldflags:
//
//	-X github.com/okkyPratama/jira-task-automation/internal/version.Version=X.Y.Z
var Version = "1.2.0"
