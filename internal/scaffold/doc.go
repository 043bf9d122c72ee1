// Package scaffold drives an external project generator and layers a fixed
// dependency list and init commands on top of the generated project.
//
// Each dependency is added with its own invocation so a failure names the
// dependency that caused it. The working directory is switched to the target
// for steps 3-7 and restored to the root on every exit path.
package scaffold
