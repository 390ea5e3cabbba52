package pipeline

import (
	"fmt"

	"github.com/matzehuels/lineage/pkg/check"
	"github.com/matzehuels/lineage/pkg/errors"
	"github.com/matzehuels/lineage/pkg/layout"
)

// =============================================================================
// Layout Generation
// =============================================================================

// GenerateLayout runs the engine selected by the chart type. Options must
// be validated. A panic inside an engine is returned as a LAYOUT_FAILED
// error instead of crashing the caller.
func GenerateLayout(opts Options) (res layout.Result, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			res = layout.NewResult()
			err = errors.Wrap(errors.ErrCodeLayoutFailed, panicError(rec),
				"%s layout failed", opts.Settings.ChartType)
		}
	}()
	return layout.Compute(opts.People, opts.FocusID, opts.Settings, opts.CollapsedIDs), nil
}

// RunCheck runs the consistency checker, turning a panic into a
// CHECK_FAILED error.
func RunCheck(opts Options) (report check.Report, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			report = nil
			err = errors.Wrap(errors.ErrCodeCheckFailed, panicError(rec), "consistency check failed")
		}
	}()
	return check.Check(opts.People), nil
}

func panicError(rec any) error {
	if err, ok := rec.(error); ok {
		return err
	}
	return fmt.Errorf("%v", rec)
}
