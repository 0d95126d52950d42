package state

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

const serverStateFileMode = 0600

// ServerState records the gateway instance currently serving a
// workspace, so other commands can report it.
type ServerState struct {
	Addr      string    `json:"addr"`
	PID       int       `json:"pid"`
	StartedAt time.Time `json:"started_at,omitempty"`
}

// Manager persists lightweight runtime state.
type Manager struct {
	serverPath string
	mu         sync.Mutex
}

// NewManager creates a state manager under <workspace>/.warden/state.
func NewManager(workspace string) *Manager {
	return &Manager{
		serverPath: filepath.Join(workspace, ".warden", "state", "server.json"),
	}
}

// LoadServerState reads server state from disk.
// Missing or malformed files are treated as empty state.
func (m *Manager) LoadServerState() (ServerState, error) {
	data, err := os.ReadFile(m.serverPath)
	if err != nil {
		if os.IsNotExist(err) {
			return ServerState{}, nil
		}
		return ServerState{}, err
	}

	var st ServerState
	if err := json.Unmarshal(data, &st); err != nil {
		return ServerState{}, nil
	}
	st.Addr = strings.TrimSpace(st.Addr)
	if st.Addr == "" || st.PID <= 0 {
		return ServerState{}, nil
	}
	return st, nil
}

// SaveServerState writes server state to disk.
func (m *Manager) SaveServerState(st ServerState) error {
	st.Addr = strings.TrimSpace(st.Addr)
	if st.Addr == "" || st.PID <= 0 {
		return nil
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(m.serverPath), 0755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(st, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(m.serverPath, data, serverStateFileMode)
}

// ClearServerState removes the persisted server state. A missing file
// is not an error.
func (m *Manager) ClearServerState() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	err := os.Remove(m.serverPath)
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}
