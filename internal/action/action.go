package action

// Kind discriminates action descriptors.
type Kind string

const (
	KindCommand     Kind = "command"
	KindEdit        Kind = "edit"
	KindPort        Kind = "port"
	KindToolInstall Kind = "tool.install"
)

// Descriptor is one unit of work proposed to the governance core. It is
// produced by an external planner, consumed exactly once, and never
// reused. Unknown kinds are valid descriptors that no handler claims.
type Descriptor struct {
	ID            string   `json:"id,omitempty"`
	Kind          Kind     `json:"kind"`
	WorkspaceRoot string   `json:"workspace_root,omitempty"`
	Command       string   `json:"command,omitempty"`
	Files         []string `json:"files,omitempty"`
	Note          string   `json:"note,omitempty"`
	Port          int      `json:"port,omitempty"`
	Op            string   `json:"op,omitempty"`
	Tool          string   `json:"tool,omitempty"`
}

// Code classifies a result for callers that branch on failure class.
type Code string

const (
	CodeOK             Code = "ok"
	CodeDenied         Code = "denied"
	CodeUnclaimed      Code = "unclaimed"
	CodeNotWhitelisted Code = "not_whitelisted"
	CodeCancelled      Code = "cancelled"
	CodeTimeout        Code = "timeout"
	CodePartialEdit    Code = "partial_edit"
	CodeHandlerError   Code = "handler_error"
	CodeError          Code = "error"
)

// Result is the final outcome of one dispatched action. It is created
// once and never mutated afterwards.
type Result struct {
	Success bool
	Code    Code
	Message string
	Data    any
	Err     error
}

// Succeeded builds a successful result.
func Succeeded(message string, data any) Result {
	return Result{Success: true, Code: CodeOK, Message: message, Data: data}
}

// Failed builds a failed result with a classification code.
func Failed(code Code, message string, err error) Result {
	if code == "" {
		code = CodeError
	}
	return Result{Code: code, Message: message, Err: err}
}

// ExecutionContext carries per-action execution state. It is supplied
// once per action and never persisted.
type ExecutionContext struct {
	WorkspaceRoot   string
	ApprovedViaChat bool
	Progress        *ProgressQueue
}
