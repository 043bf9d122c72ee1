// Package reconcile decides which manifest tools need installing and which
// only need updating, then hands each group to the package manager in one
// batch.
//
// Membership is a plain substring test against the package manager's list
// output. A tool whose name is a substring of another installed tool (php
// against php84) is therefore reported as installed.
package reconcile
