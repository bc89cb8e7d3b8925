package components

import (
	"fmt"

	"psybuilder/internal/codegen"
	"psybuilder/pkg/exptypes"
)

// Base carries the state shared by every component: name, type tag,
// ordered parameters and the start/stop conditions. Concrete components
// embed it and fill in the emission hooks.
type Base struct {
	name   string
	tag    string
	params *exptypes.ParamSet
	start  exptypes.Condition
	stop   exptypes.Condition
}

// NewBase creates the shared state for a component of the given type.
func NewBase(tag, name string) *Base {
	return &Base{
		name:   name,
		tag:    tag,
		params: exptypes.NewParamSet(),
	}
}

// Name returns the component's Python variable name.
func (b *Base) Name() string { return b.name }

// TypeTag returns the component's type tag.
func (b *Base) TypeTag() string { return b.tag }

// Params returns the component's ordered parameter set.
func (b *Base) Params() *exptypes.ParamSet { return b.params }

// StartCond returns the start condition.
func (b *Base) StartCond() exptypes.Condition { return b.start }

// StopCond returns the stop condition.
func (b *Base) StopCond() exptypes.Condition { return b.stop }

// SetConditions installs the start and stop conditions, checking that
// each kind is valid for its position. Duration kinds are relative to a
// recorded onset and so are rejected as start conditions.
func (b *Base) SetConditions(start, stop exptypes.Condition) error {
	if !start.Zero() && !exptypes.ValidStart(start.Kind) {
		return fmt.Errorf("component %q: %q is not a valid start condition kind", b.name, start.Kind)
	}
	if !stop.Zero() && !exptypes.ValidStop(stop.Kind) {
		return fmt.Errorf("component %q: %q is not a valid stop condition kind", b.name, stop.Kind)
	}
	b.start = start
	b.stop = stop
	return nil
}

// ApplyParams sets parameter values from a name->value map, walking the
// component's own parameter order so errors are reported
// deterministically. Unknown names and disallowed values fail.
func (b *Base) ApplyParams(vals map[string]string) error {
	applied := 0
	for _, name := range b.params.Names() {
		if v, ok := vals[name]; ok {
			if err := b.params.Set(name, v); err != nil {
				return fmt.Errorf("component %q: %w", b.name, err)
			}
			applied++
		}
	}
	if applied != len(vals) {
		for name := range vals {
			if _, ok := b.params.Get(name); !ok {
				return fmt.Errorf("component %q: unknown parameter %q for type %q", b.name, name, b.tag)
			}
		}
	}
	return nil
}

// RequiredParam looks up a parameter that must exist and have a value
// at emission time. Lookup failures surface as emission errors naming
// the component.
func (b *Base) RequiredParam(name string) (exptypes.Param, error) {
	p, ok := b.params.Get(name)
	if !ok {
		return exptypes.Param{}, fmt.Errorf("component %q: missing required parameter %q", b.name, name)
	}
	if p.Val == "" {
		return exptypes.Param{}, fmt.Errorf("component %q: required parameter %q has no value", b.name, name)
	}
	return p, nil
}

// WriteExperimentStartCode is a no-op by default.
func (b *Base) WriteExperimentStartCode(_ *codegen.Writer, _ *codegen.Session) error { return nil }

// WriteInitCode is a no-op by default.
func (b *Base) WriteInitCode(_ *codegen.Writer, _ *codegen.Session) error { return nil }

// WriteRoutineStartCode resets the component's status for a new
// repetition. Concrete components extend this with their own resets.
func (b *Base) WriteRoutineStartCode(w *codegen.Writer, _ *codegen.Session) error {
	w.WriteLinesf("%s.status = %s", b.name, exptypes.StatusNotStarted)
	return nil
}

// WriteFrameCode is a no-op by default.
func (b *Base) WriteFrameCode(_ *codegen.Writer, _ *codegen.Session) error { return nil }

// WriteExperimentEndCode is a no-op by default.
func (b *Base) WriteExperimentEndCode(_ *codegen.Writer, _ *codegen.Session) error { return nil }

// WriteParamUpdates emits one setter call for every parameter whose
// update scope matches scope, in parameter order. setters maps a
// parameter name to the Python setter method on the runtime object.
func (b *Base) WriteParamUpdates(w *codegen.Writer, scope exptypes.UpdateScope, setters map[string]string) {
	for _, name := range b.params.Names() {
		p, _ := b.params.Get(name)
		if p.Updates != scope {
			continue
		}
		method, ok := setters[name]
		if !ok {
			continue
		}
		w.WriteLinesf("%s.%s(%s)", b.name, method, p.Literal())
	}
}

// HasUpdates reports whether any parameter uses the given update scope
// and has a setter.
func (b *Base) HasUpdates(scope exptypes.UpdateScope, setters map[string]string) bool {
	for _, name := range b.params.Names() {
		p, _ := b.params.Get(name)
		if p.Updates != scope {
			continue
		}
		if _, ok := setters[name]; ok {
			return true
		}
	}
	return false
}

// WriteStartStopBlock emits the full guarded frame block: the start
// guard with its body and STARTED transition, then (when a stop
// condition is set) the stop guard with its body and FINISHED
// transition. Indentation is balanced on return.
func (b *Base) WriteStartStopBlock(w *codegen.Writer, startBody, stopBody []string) error {
	if err := codegen.WriteStartTest(w, b.name, b.start); err != nil {
		return err
	}
	for _, line := range startBody {
		w.WriteLines(line)
	}
	w.WriteLinesf("%s.status = %s", b.name, exptypes.StatusStarted)
	if err := w.Dedent(); err != nil {
		return err
	}

	if b.stop.Zero() {
		return nil
	}
	if err := codegen.WriteStopTest(w, b.name, b.start, b.stop); err != nil {
		return err
	}
	for _, line := range stopBody {
		w.WriteLines(line)
	}
	w.WriteLinesf("%s.status = %s", b.name, exptypes.StatusFinished)
	return w.Dedent()
}
