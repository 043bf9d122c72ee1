// Package profile describes what devboot sets up: package manager buckets and
// tools, the php.ini rules, environment variables, and the project templates
// used by scaffold.
//
// [Default] returns the built-in profile. [Load] decodes an HCL profile file
// on top of it; every top-level block present in the file replaces the
// matching default section. Expressions in the file can reference home,
// scoop_dir and env (the process environment).
package profile
