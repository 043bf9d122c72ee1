// Package cli wires together the Cobra command tree for the devboot binary.
//
// It defines the root command and all subcommands (setup, scaffold, plan,
// ini, journal, config, version), binds flags, reads configuration and the
// setup profile, runs the pipelines, and maps failures to exit codes: the
// failing external tool's own code when there is one, 1 otherwise.
package cli
