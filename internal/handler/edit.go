package handler

import (
	"context"
	"errors"
	"fmt"

	"github.com/wardenhq/warden/internal/action"
	"github.com/wardenhq/warden/internal/edit"
)

// NewEditHandler claims edit descriptors and applies the annotation to
// each listed file in order. A failure after the first file mutated is
// surfaced as a partial application, carrying the files already
// written, which is distinct from a clean failure.
func NewEditHandler(applier edit.Applier) Registration {
	return Registration{
		ID:       "edit",
		Priority: 80,
		CanHandle: func(desc action.Descriptor) bool {
			return desc.Kind == action.KindEdit && len(desc.Files) > 0
		},
		Execute: func(ctx context.Context, desc action.Descriptor, execCtx *action.ExecutionContext) action.Result {
			report, err := applier.Apply(ctx, execCtx.WorkspaceRoot, desc.Files, desc.Note)
			if err != nil {
				var partial *edit.PartialError
				if errors.As(err, &partial) {
					return action.Result{
						Success: false,
						Code:    action.CodePartialEdit,
						Message: partial.Error(),
						Data: map[string]any{
							"applied": partial.Applied,
							"failed":  partial.Failed,
						},
						Err: err,
					}
				}
				return action.Failed(action.CodeError, "edit not applied", err)
			}
			return action.Succeeded(
				fmt.Sprintf("annotated %d file(s)", len(report.Applied)),
				map[string]any{
					"applied": report.Applied,
					"created": report.Created,
				})
		},
	}
}
