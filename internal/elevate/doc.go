// Package elevate detects whether the process has administrator rights and
// re-launches it elevated when it does not. The elevated copy runs in the
// caller's working directory and its exit code is handed back to the caller.
package elevate
