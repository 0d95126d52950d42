package shell

// tailWriter keeps only the trailing limit bytes of everything written,
// so chatty commands cannot grow memory without bound.
type tailWriter struct {
	buf       []byte
	limit     int
	truncated bool
}

func newTailWriter(limit int) *tailWriter {
	return &tailWriter{limit: limit}
}

func (w *tailWriter) Write(p []byte) (int, error) {
	w.buf = append(w.buf, p...)
	if len(w.buf) > w.limit {
		w.buf = w.buf[len(w.buf)-w.limit:]
		w.truncated = true
	}
	return len(p), nil
}

func (w *tailWriter) String() string { return string(w.buf) }

func (w *tailWriter) Truncated() bool { return w.truncated }
