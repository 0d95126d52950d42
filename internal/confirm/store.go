package confirm

import (
	"context"
	"fmt"

	"github.com/wardenhq/warden/internal/approval"
)

// StoreGate satisfies confirmations from the durable approval store so
// operators can grant them out-of-band, for example while the agent
// runs headless behind the gateway. When no approved record covers the
// request it files a pending one and cancels with a remediation hint.
type StoreGate struct {
	service *approval.Service
}

func NewStoreGate(service *approval.Service) *StoreGate {
	return &StoreGate{service: service}
}

func (g *StoreGate) Require(ctx context.Context, req Request) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", fmt.Errorf("%w: %v", ErrCancelled, err)
	}
	if _, err := g.service.ExpirePending(); err != nil {
		return "", fmt.Errorf("expire pending approvals: %w", err)
	}

	payload := NormalizePayload(req.PayloadJSON)
	requests, err := g.service.List(approval.Query{Action: req.Action})
	if err != nil {
		return "", fmt.Errorf("list approvals: %w", err)
	}

	approved, pending := matchRequests(requests, payload)
	if approved != nil {
		return affirmativeOption(req.Options), nil
	}
	if pending != nil {
		return "", fmt.Errorf("%w: approval %s is pending. Run: warden approval approve %s --by <name>", ErrCancelled, pending.ID, pending.ID)
	}

	created, err := g.service.Create(approval.CreateInput{
		Action:      req.Action,
		PayloadJSON: payload,
		Summary:     req.Description,
		Reason:      "destructive action requires approval",
	})
	if err != nil {
		return "", fmt.Errorf("create approval request: %w", err)
	}
	return "", fmt.Errorf("%w: approval required. Run: warden approval approve %s --by <name>", ErrCancelled, created.ID)
}

// matchRequests returns the most recent approved and pending requests
// whose payload matches. Approved records are not consumed by a match;
// the most recent decision wins.
func matchRequests(requests []approval.Request, payload string) (approvedMatch, pendingMatch *approval.Request) {
	for i := range requests {
		req := requests[i]
		if NormalizePayload(req.PayloadJSON) != payload {
			continue
		}
		switch req.Status {
		case approval.StatusApproved:
			if approvedMatch == nil || req.DecidedAt.After(approvedMatch.DecidedAt) {
				approvedMatch = &req
			}
		case approval.StatusPending:
			if pendingMatch == nil || req.RequestedAt.After(pendingMatch.RequestedAt) {
				pendingMatch = &req
			}
		}
	}
	return approvedMatch, pendingMatch
}
