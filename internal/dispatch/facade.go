package dispatch

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/wardenhq/warden/internal/action"
	"github.com/wardenhq/warden/internal/audit"
	"github.com/wardenhq/warden/internal/confirm"
	"github.com/wardenhq/warden/internal/handler"
	"github.com/wardenhq/warden/internal/metrics"
	"github.com/wardenhq/warden/internal/policy"
)

// Facade is the single entry point for dispatching a proposed action.
// Every action passes policy first, then handler selection, then the
// confirmation gate for destructive handlers, and every transition is
// written to the workspace audit trail. Nothing above the facade ever
// sees a raw panic; outcomes terminate here as a structured result.
type Facade struct {
	evaluator policy.Evaluator
	registry  *handler.Registry
	gate      confirm.Gate
	recorder  *metrics.DispatchMetrics

	defaultRoot string

	mu      sync.Mutex
	locks   map[string]*sync.Mutex
	writers map[string]*audit.Writer

	now func() time.Time
}

// New builds a facade. defaultRoot is used when a descriptor does not
// name its own workspace root.
func New(evaluator policy.Evaluator, registry *handler.Registry, gate confirm.Gate, defaultRoot string) *Facade {
	return &Facade{
		evaluator:   evaluator,
		registry:    registry,
		gate:        gate,
		defaultRoot: strings.TrimSpace(defaultRoot),
		locks:       make(map[string]*sync.Mutex),
		writers:     make(map[string]*audit.Writer),
		now:         time.Now,
	}
}

// SetMetrics attaches a dispatch metrics recorder for outcome stats.
func (f *Facade) SetMetrics(recorder *metrics.DispatchMetrics) {
	f.recorder = recorder
}

// Dispatch consumes one descriptor and returns its final result plus
// any progress events the handler emitted. Actions against the same
// workspace root are serialized; distinct roots run independently.
func (f *Facade) Dispatch(ctx context.Context, desc action.Descriptor) (action.Result, []action.ProgressEvent) {
	start := f.now()
	result, events := f.dispatch(ctx, desc)
	if _, err := f.recorder.RecordDispatch(f.now().Sub(start), string(result.Code)); err != nil {
		slog.Warn("failed to record dispatch metrics", "code", result.Code, "error", err)
	}
	return result, events
}

func (f *Facade) dispatch(ctx context.Context, desc action.Descriptor) (action.Result, []action.ProgressEvent) {
	if desc.ID == "" {
		desc.ID = action.NewRequestID()
	}
	root := strings.TrimSpace(desc.WorkspaceRoot)
	if root == "" {
		root = f.defaultRoot
	}

	lock := f.workspaceLock(root)
	lock.Lock()
	defer lock.Unlock()

	f.appendAudit(root, "action_proposed", desc, string(desc.Kind))

	decision := f.evaluator.Evaluate(policy.Input{
		WorkspaceRoot: root,
		Command:       desc.Command,
		Files:         desc.Files,
	})
	if !decision.Allowed {
		f.appendAudit(root, "policy_denied", desc, decision.Reason)
		return action.Failed(action.CodeDenied, decision.Reason, nil), nil
	}
	f.appendAudit(root, "policy_allowed", desc, "")

	reg, ok := f.registry.Select(desc)
	if !ok {
		msg := fmt.Sprintf("no handler claims action kind %q", desc.Kind)
		f.appendAudit(root, "action_unclaimed", desc, msg)
		return action.Failed(action.CodeUnclaimed, msg, nil), nil
	}
	f.appendAudit(root, "handler_selected", desc, reg.ID)

	execCtx := &action.ExecutionContext{
		WorkspaceRoot: root,
		Progress:      action.NewProgressQueue(0),
	}

	if reg.Destructive {
		selected, err := f.confirmDestructive(ctx, desc)
		if err != nil {
			if errors.Is(err, confirm.ErrCancelled) {
				f.appendAudit(root, "action_cancelled", desc, err.Error())
				return action.Failed(action.CodeCancelled, err.Error(), err), nil
			}
			f.appendAudit(root, "action_failed", desc, err.Error())
			return action.Failed(action.CodeError, "confirmation failed", err), nil
		}
		execCtx.ApprovedViaChat = true
		f.appendAudit(root, "action_confirmed", desc, selected)
	}

	f.appendAudit(root, "action_executing", desc, reg.ID)
	result := f.registry.Execute(ctx, reg, desc, execCtx)
	events := execCtx.Progress.Drain()

	if result.Success {
		f.appendAudit(root, "action_completed", desc, result.Message)
	} else {
		f.appendAudit(root, "action_failed", desc, fmt.Sprintf("%s: %s", result.Code, result.Message))
	}
	return result, events
}

func (f *Facade) confirmDestructive(ctx context.Context, desc action.Descriptor) (string, error) {
	payload, err := json.Marshal(desc)
	if err != nil {
		return "", fmt.Errorf("encode action payload: %w", err)
	}
	return f.gate.Require(ctx, confirm.Request{
		ID:          desc.ID,
		Action:      string(desc.Kind),
		PayloadJSON: string(payload),
		Description: Describe(desc),
	})
}

// Describe renders a one-line human summary of a descriptor, used in
// confirmation prompts and approval records.
func Describe(desc action.Descriptor) string {
	switch desc.Kind {
	case action.KindCommand:
		return fmt.Sprintf("Run command: %s", desc.Command)
	case action.KindEdit:
		return fmt.Sprintf("Annotate %d file(s): %s", len(desc.Files), strings.Join(desc.Files, ", "))
	case action.KindPort:
		op := desc.Op
		if op == "" {
			op = "status"
		}
		return fmt.Sprintf("Port %d: %s", desc.Port, op)
	case action.KindToolInstall:
		return fmt.Sprintf("Install tool: %s", desc.Tool)
	default:
		return fmt.Sprintf("Action %s", desc.Kind)
	}
}

func (f *Facade) workspaceLock(root string) *sync.Mutex {
	f.mu.Lock()
	defer f.mu.Unlock()

	lock, ok := f.locks[root]
	if !ok {
		lock = &sync.Mutex{}
		f.locks[root] = lock
	}
	return lock
}

func (f *Facade) auditWriter(root string) *audit.Writer {
	if root == "" {
		return nil
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	writer, ok := f.writers[root]
	if !ok {
		writer = audit.NewWriter(root)
		f.writers[root] = writer
	}
	return writer
}

func (f *Facade) appendAudit(root, eventType string, desc action.Descriptor, result string) {
	writer := f.auditWriter(root)
	if writer == nil {
		return
	}

	event := audit.Event{
		Time:     f.now().UTC(),
		Type:     strings.TrimSpace(eventType),
		ActionID: desc.ID,
		Kind:     string(desc.Kind),
		Result:   strings.TrimSpace(result),
	}
	if err := writer.Append(event); err != nil {
		slog.Warn("failed to append audit event", "type", event.Type, "kind", event.Kind, "error", err)
	}
}
