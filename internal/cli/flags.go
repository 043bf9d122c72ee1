package cli

import (
	"github.com/spf13/pflag"
)

// Global flags
var (
	flagProfile  string
	flagLogLevel string
)

func addGlobalFlags(fs *pflag.FlagSet) {
	fs.StringVar(&flagProfile, "profile", "", "Profile file (HCL) layered over the built-in setup profile")
	fs.StringVar(&flagLogLevel, "log-level", "", "Log level (debug, info, warn, error)")
}

func buildOverrides() map[string]string {
	m := make(map[string]string)
	if flagProfile != "" {
		m["profileFile"] = flagProfile
	}
	if flagLogLevel != "" {
		m["logLevel"] = flagLogLevel
	}
	return m
}
