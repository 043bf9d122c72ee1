// Package pkgmgr drives the external package manager binary (scoop by
// default).
//
// [Client] maps each operation to one subcommand: install, update,
// bucket add, bucket list, list, cleanup *, cache rm *. A non-zero exit is
// returned as a *runner.ExitError and never parsed. [Client.Ensure] resolves
// the binary and, when it is missing, runs the bootstrap command once before
// giving up with [ErrNotInstalled].
package pkgmgr
