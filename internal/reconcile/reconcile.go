package reconcile

import (
	"context"
	"fmt"
	"strings"

	"github.com/dshills/devboot/internal/ctxlog"
)

// Manager is the subset of the package manager the reconciler drives.
type Manager interface {
	List(ctx context.Context) (string, error)
	Install(ctx context.Context, names ...string) error
	Update(ctx context.Context, names ...string) error
}

// Plan is the partition of a manifest. Every manifest entry appears in
// exactly one of the two slices, in manifest order.
type Plan struct {
	ToInstall []string `json:"toInstall"`
	ToUpdate  []string `json:"toUpdate"`
}

// Partition splits desired into tools absent from installedReport and tools
// present in it.
func Partition(desired []string, installedReport string) Plan {
	var plan Plan
	for _, tool := range desired {
		if strings.Contains(installedReport, tool) {
			plan.ToUpdate = append(plan.ToUpdate, tool)
		} else {
			plan.ToInstall = append(plan.ToInstall, tool)
		}
	}
	return plan
}

// Apply runs at most one install and one update invocation.
func Apply(ctx context.Context, mgr Manager, plan Plan) error {
	logger := ctxlog.FromContext(ctx)
	if len(plan.ToInstall) > 0 {
		logger.Info("installing tools", "tools", plan.ToInstall)
		if err := mgr.Install(ctx, plan.ToInstall...); err != nil {
			return fmt.Errorf("installing %s: %w", strings.Join(plan.ToInstall, ", "), err)
		}
	}
	if len(plan.ToUpdate) > 0 {
		logger.Info("updating tools", "tools", plan.ToUpdate)
		if err := mgr.Update(ctx, plan.ToUpdate...); err != nil {
			return fmt.Errorf("updating %s: %w", strings.Join(plan.ToUpdate, ", "), err)
		}
	}
	return nil
}

// Compute lists installed tools and partitions desired against the report.
func Compute(ctx context.Context, mgr Manager, desired []string) (Plan, error) {
	report, err := mgr.List(ctx)
	if err != nil {
		return Plan{}, fmt.Errorf("listing installed tools: %w", err)
	}
	return Partition(desired, report), nil
}

// Run computes the plan and applies it.
func Run(ctx context.Context, mgr Manager, desired []string) (Plan, error) {
	plan, err := Compute(ctx, mgr, desired)
	if err != nil {
		return Plan{}, err
	}
	return plan, Apply(ctx, mgr, plan)
}
