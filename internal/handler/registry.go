package handler

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"

	"github.com/wardenhq/warden/internal/action"
)

// Registration describes one capability-checked handler. CanHandle
// decides whether the handler claims a descriptor; Execute runs it.
// Destructive registrations pass through the confirmation gate before
// Execute is invoked.
type Registration struct {
	ID          string
	Priority    int
	Destructive bool
	CanHandle   func(desc action.Descriptor) bool
	Execute     func(ctx context.Context, desc action.Descriptor, execCtx *action.ExecutionContext) action.Result
}

type entry struct {
	Registration
	seq int
}

// Registry holds handler registrations ordered by priority descending,
// ties broken by registration order. Handlers may be added or removed
// at runtime; the registry keeps no per-dispatch state.
type Registry struct {
	mu      sync.RWMutex
	entries []entry
	nextSeq int
}

func NewRegistry() *Registry {
	return &Registry{}
}

// Register adds a handler and re-sorts the table.
func (r *Registry) Register(reg Registration) error {
	if reg.ID == "" {
		return fmt.Errorf("handler registration missing id")
	}
	if reg.CanHandle == nil || reg.Execute == nil {
		return fmt.Errorf("handler %s missing canHandle or execute", reg.ID)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	for _, existing := range r.entries {
		if existing.ID == reg.ID {
			return fmt.Errorf("handler already registered: %s", reg.ID)
		}
	}

	r.entries = append(r.entries, entry{Registration: reg, seq: r.nextSeq})
	r.nextSeq++
	sort.SliceStable(r.entries, func(i, j int) bool {
		if r.entries[i].Priority != r.entries[j].Priority {
			return r.entries[i].Priority > r.entries[j].Priority
		}
		return r.entries[i].seq < r.entries[j].seq
	})
	return nil
}

// Unregister removes a handler by id. Removing an unknown id is a
// no-op.
func (r *Registry) Unregister(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i, existing := range r.entries {
		if existing.ID == id {
			r.entries = append(r.entries[:i], r.entries[i+1:]...)
			return
		}
	}
}

// List returns the registrations in dispatch order.
func (r *Registry) List() []Registration {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Registration, 0, len(r.entries))
	for _, e := range r.entries {
		out = append(out, e.Registration)
	}
	return out
}

// Select returns the first registration that claims the descriptor, in
// priority order. A panicking CanHandle counts as not claiming.
func (r *Registry) Select(desc action.Descriptor) (Registration, bool) {
	for _, reg := range r.List() {
		if claims(reg, desc) {
			return reg, true
		}
	}
	return Registration{}, false
}

// Dispatch invokes the execute of the first handler claiming the
// descriptor. No claim yields an unclaimed result, which is distinct
// from a policy denial. A panic inside execute is captured and
// reported as a handler error; it never escapes to the caller.
func (r *Registry) Dispatch(ctx context.Context, desc action.Descriptor, execCtx *action.ExecutionContext) action.Result {
	reg, ok := r.Select(desc)
	if !ok {
		return action.Failed(action.CodeUnclaimed,
			fmt.Sprintf("no handler claims action kind %q", desc.Kind), nil)
	}
	return invoke(ctx, reg, desc, execCtx)
}

// Execute runs an already-selected registration with the same panic
// capture as Dispatch. Callers that need the registration up front,
// for example to check Destructive, select once and execute that exact
// handler.
func (r *Registry) Execute(ctx context.Context, reg Registration, desc action.Descriptor, execCtx *action.ExecutionContext) action.Result {
	return invoke(ctx, reg, desc, execCtx)
}

func claims(reg Registration, desc action.Descriptor) (claimed bool) {
	defer func() {
		if rec := recover(); rec != nil {
			slog.Warn("handler canHandle panicked", "handler", reg.ID, "panic", rec)
			claimed = false
		}
	}()
	return reg.CanHandle(desc)
}

func invoke(ctx context.Context, reg Registration, desc action.Descriptor, execCtx *action.ExecutionContext) (result action.Result) {
	defer func() {
		if rec := recover(); rec != nil {
			slog.Error("handler panicked", "handler", reg.ID, "panic", rec)
			result = action.Failed(action.CodeHandlerError,
				fmt.Sprintf("handler %s failed", reg.ID),
				fmt.Errorf("handler %s panicked: %v", reg.ID, rec))
		}
	}()
	return reg.Execute(ctx, desc, execCtx)
}
