package confirm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
)

// ErrCancelled reports a declined or abandoned confirmation. Callers
// treat it identically to a denial: the guarded handler has performed
// no side effect.
var ErrCancelled = errors.New("confirmation cancelled")

// Request describes one decision put to the human operator before a
// destructive handler proceeds.
type Request struct {
	ID          string
	Action      string
	PayloadJSON string
	Description string
	Options     []string
}

// Gate blocks an in-flight action until a human answers. Require
// returns the selected option; selecting a decline option, closing the
// input, or cancelling the context yields ErrCancelled. When Options is
// empty the gate offers yes/no.
type Gate interface {
	Require(ctx context.Context, req Request) (string, error)
}

var defaultOptions = []string{"yes", "no"}

// isDecline reports whether a selected option means "do not proceed".
func isDecline(option string) bool {
	switch strings.ToLower(strings.TrimSpace(option)) {
	case "no", "n", "cancel", "deny":
		return true
	}
	return false
}

// affirmativeOption picks the option returned when an out-of-band
// approval already covers the request.
func affirmativeOption(options []string) string {
	for _, opt := range options {
		if !isDecline(opt) {
			return opt
		}
	}
	return "yes"
}

// NormalizePayload canonicalizes a payload fingerprint so the same
// action matches across dispatches regardless of JSON whitespace.
func NormalizePayload(raw string) string {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return "{}"
	}

	var buf bytes.Buffer
	if err := json.Compact(&buf, []byte(trimmed)); err != nil {
		return trimmed
	}
	return buf.String()
}
