package codegen

import (
	"fmt"

	"psybuilder/pkg/exptypes"
)

// testBuilder turns a component name and condition value into the
// boolean test fragment of a guard line.
type testBuilder func(name, val string) (string, error)

// startTests maps each start-condition kind to its emission rule.
var startTests = map[exptypes.ConditionKind]testBuilder{
	exptypes.CondTime: func(_, val string) (string, error) {
		if val == "" {
			return "", fmt.Errorf("time condition needs a value in seconds")
		}
		return fmt.Sprintf("t >= %s", val), nil
	},
	exptypes.CondFrame: func(_, val string) (string, error) {
		if val == "" {
			return "", fmt.Errorf("frame condition needs a frame index")
		}
		return fmt.Sprintf("frameN >= %s", val), nil
	},
	exptypes.CondExpr: func(_, val string) (string, error) {
		if val == "" {
			return "", fmt.Errorf("condition test needs a boolean expression")
		}
		return fmt.Sprintf("(%s)", val), nil
	},
	exptypes.CondStarted: func(_, val string) (string, error) {
		if val == "" {
			return "", fmt.Errorf("component-started condition needs a component name")
		}
		return fmt.Sprintf("%s.status == %s", val, exptypes.StatusStarted), nil
	},
	exptypes.CondFinished: func(_, val string) (string, error) {
		if val == "" {
			return "", fmt.Errorf("component-finished condition needs a component name")
		}
		return fmt.Sprintf("%s.status == %s", val, exptypes.StatusFinished), nil
	},
	exptypes.CondMouseClick: func(_, val string) (string, error) {
		if val == "" {
			val = "0" // left button
		}
		return fmt.Sprintf("mouse.getPressed()[%s]", val), nil
	},
	exptypes.CondKeyPress: func(_, val string) (string, error) {
		if val == "" {
			return "len(event.getKeys()) > 0", nil
		}
		return fmt.Sprintf("len(event.getKeys(keyList=%s)) > 0", val), nil
	},
}

// StartTest returns the boolean test fragment for a component's start
// condition. A zero condition means the component starts at t == 0.
func StartTest(name string, cond exptypes.Condition) (string, error) {
	if cond.Zero() {
		cond = exptypes.Condition{Kind: exptypes.CondTime, Val: "0.0"}
	}
	build, ok := startTests[cond.Kind]
	if !ok {
		return "", fmt.Errorf("component %q: unsupported start condition kind %q", name, cond.Kind)
	}
	test, err := build(name, cond.Val)
	if err != nil {
		return "", fmt.Errorf("component %q: %w", name, err)
	}
	return test, nil
}

// StopTest returns the boolean test fragment for a component's stop
// condition. Duration kinds are measured from the component's recorded
// onset rather than its nominal start value: a frame duration compares
// against the recorded frameNStart, and a time duration against the
// recorded tStart. When the start condition is frame-based and the stop
// is a time duration, the emitted test still uses tStart plus the
// duration, an approximation preserved from the original generator.
func StopTest(name string, start, stop exptypes.Condition) (string, error) {
	switch stop.Kind {
	case exptypes.CondDurationTime:
		if stop.Val == "" {
			return "", fmt.Errorf("component %q: duration condition needs a value in seconds", name)
		}
		return fmt.Sprintf("t >= (%s.tStart + %s)", name, stop.Val), nil
	case exptypes.CondDurationFrames:
		if stop.Val == "" {
			return "", fmt.Errorf("component %q: duration condition needs a frame count", name)
		}
		return fmt.Sprintf("frameN >= (%s.frameNStart + %s)", name, stop.Val), nil
	}

	build, ok := startTests[stop.Kind]
	if !ok {
		return "", fmt.Errorf("component %q: unsupported stop condition kind %q", name, stop.Kind)
	}
	test, err := build(name, stop.Val)
	if err != nil {
		return "", fmt.Errorf("component %q: %w", name, err)
	}
	return test, nil
}

// WriteStartTest emits the start guard for a component: a comment, the
// "if" line testing the start condition against the NOT_STARTED sentinel
// and the onset bookkeeping, leaving the writer indented one level for
// the component's start body. The caller dedents after the body.
func WriteStartTest(w *Writer, name string, cond exptypes.Condition) error {
	test, err := StartTest(name, cond)
	if err != nil {
		return err
	}
	w.WriteLinesf("# *%s* updates", name)
	w.WriteLinesf("if %s and %s.status == %s:", test, name, exptypes.StatusNotStarted)
	w.Indent()
	w.WriteLines("# keep track of start time/frame for later")
	w.WriteLinesf("%s.tStart = t", name)
	w.WriteLinesf("%s.frameNStart = frameN  # exact frame index", name)
	return nil
}

// WriteStopTest emits the stop guard for a component: the "if" line
// testing the STARTED sentinel and the stop condition, leaving the
// writer indented one level for the component's stop body. The caller
// dedents after the body.
func WriteStopTest(w *Writer, name string, start, stop exptypes.Condition) error {
	test, err := StopTest(name, start, stop)
	if err != nil {
		return err
	}
	w.WriteLinesf("if %s.status == %s and %s:", name, exptypes.StatusStarted, test)
	w.Indent()
	return nil
}
