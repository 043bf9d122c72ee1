// Devboot bootstraps a Windows PHP/Node development machine and scaffolds
// Laravel and Vue projects on it.
//
// It installs or updates the toolchain through scoop, patches php.ini with
// the extensions Laravel needs, persists PHPRC, and generates a backend and a
// frontend project with their dependencies.
//
// Usage:
//
//	devboot setup                     # install/update tools, patch php.ini, set PHPRC
//	devboot plan --format json        # show what setup would change
//	devboot scaffold                  # prompt for a directory, generate both projects
//	devboot scaffold --only backend   # generate just the Laravel backend
//	devboot ini check                 # preview the php.ini rule set
//	devboot ini restore               # roll php.ini back to its last backup
//	devboot journal list              # show past runs
//
// A profile file (HCL) passed with --profile, or devboot.hcl in the config
// directory, overrides the built-in buckets, tools, rules and projects.
package main
