// Package version provides build and version information.
package version

// Version is the current application version.
const Version = "0.3.0"

// UserAgent is sent with every API request.
const UserAgent = "ls-telescope/" + Version

// Milestones:
// 0.3.0 - Extended date form with BCE years, landmark panel, milestone hot reload
// 0.2.0 - Headless mode, JSON export, rotating log file
// 0.1.0 - Initial release: starfield TUI, light-travel calculation
