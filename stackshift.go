// Package stackshift holds metadata shared by the CLI.
package stackshift

// Version is the current release version.
const Version = "0.2.0"
