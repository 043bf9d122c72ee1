// Package envvar sets environment variables for the current process and, on
// Windows, persists them at user scope.
package envvar
