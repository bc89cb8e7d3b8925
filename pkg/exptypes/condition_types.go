// This file contains the condition types that decide when a component
// starts and stops during a routine's run, and the status sentinels the
// generated script compares against.
package exptypes

// ConditionKind tags the rule used to test whether a component should
// activate or deactivate on a given display frame.
type ConditionKind string

const (
	// CondTime activates once the routine clock reaches a time in seconds.
	CondTime ConditionKind = "time (s)"
	// CondFrame activates once the frame counter reaches a frame index.
	CondFrame ConditionKind = "frame N"
	// CondExpr activates when an arbitrary boolean expression holds.
	CondExpr ConditionKind = "condition"
	// CondStarted activates when another named component has started.
	CondStarted ConditionKind = "component started"
	// CondFinished activates when another named component has finished.
	CondFinished ConditionKind = "component finished"
	// CondMouseClick activates on a mouse button press.
	CondMouseClick ConditionKind = "mouse click"
	// CondKeyPress activates on a keyboard press, optionally restricted
	// to a key list.
	CondKeyPress ConditionKind = "key press"

	// CondDurationTime deactivates a fixed number of seconds after the
	// component's recorded onset. Stop-only.
	CondDurationTime ConditionKind = "duration (s)"
	// CondDurationFrames deactivates a fixed number of frames after the
	// component's recorded onset frame. Stop-only.
	CondDurationFrames ConditionKind = "duration (frames)"
)

// Condition pairs a kind with its value expression. The value is an
// already-validated code-fragment string: a number for time/frame kinds,
// a component name for dependency kinds, a Python expression for
// CondExpr, a Python key list for CondKeyPress.
type Condition struct {
	Kind ConditionKind `yaml:"kind"`
	Val  string        `yaml:"val"`
}

// Zero reports whether the condition is unset. An unset start condition
// means "immediately"; an unset stop condition means "never".
func (c Condition) Zero() bool {
	return c.Kind == ""
}

// StartKinds lists the condition kinds valid as a start condition.
func StartKinds() []ConditionKind {
	return []ConditionKind{
		CondTime, CondFrame, CondExpr,
		CondStarted, CondFinished,
		CondMouseClick, CondKeyPress,
	}
}

// StopKinds lists the condition kinds valid as a stop condition.
func StopKinds() []ConditionKind {
	return append(StartKinds(), CondDurationTime, CondDurationFrames)
}

// ValidStart reports whether kind may be used as a start condition.
// Duration kinds are relative to a recorded onset, so they are stop-only.
func ValidStart(kind ConditionKind) bool {
	for _, k := range StartKinds() {
		if k == kind {
			return true
		}
	}
	return false
}

// ValidStop reports whether kind may be used as a stop condition.
func ValidStop(kind ConditionKind) bool {
	for _, k := range StopKinds() {
		if k == kind {
			return true
		}
	}
	return false
}

// Status sentinel names mirrored in the generated script via
// "from psychopy.constants import NOT_STARTED, STARTED, FINISHED".
const (
	StatusNotStarted = "NOT_STARTED"
	StatusStarted    = "STARTED"
	StatusFinished   = "FINISHED"
)
