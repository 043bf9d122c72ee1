// Package ctxlog carries a *slog.Logger through context.Context so that
// pipeline steps can log without threading a logger parameter everywhere.
package ctxlog
