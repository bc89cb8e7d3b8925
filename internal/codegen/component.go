package codegen

import "psybuilder/pkg/exptypes"

// Component is implemented by every unit placed on a routine's timeline.
// Each hook writes into the shared Writer; a hook must leave the
// indentation level exactly where it found it (net-zero delta), so code
// emitted by one component never shifts the level seen by the next.
type Component interface {
	// Name is the Python variable name of the component in the script.
	Name() string
	// TypeTag identifies the component type ("text", "sound", ...).
	TypeTag() string
	// Params returns the component's ordered parameter set.
	Params() *exptypes.ParamSet
	// StartCond and StopCond return the timeline conditions. A zero
	// start condition means "active from the first frame"; a zero stop
	// condition means "never stops on its own".
	StartCond() exptypes.Condition
	StopCond() exptypes.Condition

	// WriteExperimentStartCode emits one-time setup at the top of the
	// script, typically imports, deduplicated through the session.
	WriteExperimentStartCode(w *Writer, s *Session) error
	// WriteInitCode instantiates the runtime stimulus/device object.
	WriteInitCode(w *Writer, s *Session) error
	// WriteRoutineStartCode resets per-repetition state.
	WriteRoutineStartCode(w *Writer, s *Session) error
	// WriteFrameCode emits the guarded start/update/stop block executed
	// on every display refresh.
	WriteFrameCode(w *Writer, s *Session) error
	// WriteExperimentEndCode emits teardown at the end of the script.
	WriteExperimentEndCode(w *Writer, s *Session) error
}
