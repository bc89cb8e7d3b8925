package codegen

// Session carries per-generation state through every emission hook. It
// replaces shared mutable flags with explicit state owned by one
// generation pass: import deduplication, one-shot setup lines such as
// the trigger-port request, and test-mode determinism.
type Session struct {
	// TestMode selects deterministic ids and timestamps in the script
	// header so golden-file comparisons stay byte-identical.
	TestMode bool

	once     map[string]bool
	teardown []string
}

// NewSession creates session state for a single generation pass.
func NewSession(testMode bool) *Session {
	return &Session{
		TestMode: testMode,
		once:     make(map[string]bool),
	}
}

// Once reports true the first time it is called with key within this
// session and false on every later call. Components use it to emit
// shared setup exactly once: a support-module import, the line that
// opens the trigger port, a teardown statement.
func (s *Session) Once(key string) bool {
	if s.once[key] {
		return false
	}
	s.once[key] = true
	return true
}

// Seen reports whether key has already been claimed via Once.
func (s *Session) Seen(key string) bool {
	return s.once[key]
}

// Teardown registers lines to emit after every component's
// experiment-end hook has run. Shared resources (a serial link, a
// trigger port) must outlive the last component that uses them, so
// their shutdown cannot live inside any one component's hook. The key
// deduplicates: later registrations under a claimed key are dropped.
func (s *Session) Teardown(key string, lines ...string) {
	if s.Once(key) {
		s.teardown = append(s.teardown, lines...)
	}
}

// TeardownLines returns the registered teardown lines in registration
// order.
func (s *Session) TeardownLines() []string {
	return s.teardown
}
