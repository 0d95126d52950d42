package policy

// DocumentFileName is the policy file resolved under each workspace root.
const DocumentFileName = ".wardenpolicy.json"

// Document is the per-workspace policy file shape.
type Document struct {
	Allow AllowRules `json:"allow,omitempty"`
	Deny  DenyRules  `json:"deny,omitempty"`
}

// AllowRules lists what the workspace explicitly permits.
type AllowRules struct {
	Commands []string `json:"commands,omitempty"`
	Paths    []string `json:"paths,omitempty"`
}

// DenyRules lists what the workspace explicitly forbids.
type DenyRules struct {
	Commands []string `json:"commands,omitempty"`
}

// Input is one proposed action to evaluate.
type Input struct {
	WorkspaceRoot string
	Command       string
	Files         []string
}

// Decision is the deterministic policy result.
type Decision struct {
	Allowed bool
	Reason  string
}
