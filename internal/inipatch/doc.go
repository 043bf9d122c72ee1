// Package inipatch rewrites a line-oriented configuration file (php.ini) in
// place using an ordered list of rules.
//
// For every line the first rule whose pattern matches decides the new line;
// unmatched lines are copied through. The output always has as many lines as
// the input. [PatchFile] writes a byte-for-byte backup named
// <stem>-<uuid><ext> next to the file and syncs it before the original is
// overwritten. The overwrite itself is not atomic.
package inipatch
