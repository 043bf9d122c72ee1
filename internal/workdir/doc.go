// Package workdir switches the process working directory for the duration of
// a scaffolding step and always puts it back where it was.
package workdir
