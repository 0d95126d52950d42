package confirm

import "context"

// AutoGate approves every request without asking. It backs the --yes
// flag on one-shot dispatches where the operator has already decided.
type AutoGate struct{}

// Require immediately selects the affirmative option.
func (AutoGate) Require(ctx context.Context, req Request) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	options := req.Options
	if len(options) == 0 {
		options = defaultOptions
	}
	return affirmativeOption(options), nil
}
