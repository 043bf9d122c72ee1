// Package setup runs the environment setup pipeline and computes its
// dry-run plan.
//
// The pipeline is strictly sequential and fail-fast:
//
//	ensure package manager -> register buckets -> reconcile tools ->
//	cleanup -> patch php.ini -> set environment variables
//
// [Pipeline.Plan] performs only read-only queries and reports what
// [Pipeline.Run] would change.
package setup
