// Package runner runs external commands and reports their exit status as a
// value, so callers can decide what a non-zero exit means.
package runner
