package experiment

import (
	"fmt"

	"github.com/google/uuid"

	"psybuilder/internal/codegen"
	"psybuilder/pkg/exptypes"
)

// Routine is an ordered group of components sharing one timeline within
// a trial or screen.
type Routine struct {
	Name       string
	Components []codegen.Component
}

// Loop repeats a sequence of routines a fixed number of times.
type Loop struct {
	Name     string
	NReps    int
	Routines []*Routine
}

// FlowEntry is one step of the experiment flow: either a single routine
// or a loop over routines. Exactly one field is set.
type FlowEntry struct {
	Routine *Routine
	Loop    *Loop
}

// Experiment is the in-memory model the generator walks: settings, the
// routines in file order, and the flow of routine/loop entries.
type Experiment struct {
	Name        string
	FileVersion string
	Settings    *Settings
	Routines    []*Routine
	Flow        []FlowEntry

	byName map[string]*Routine
}

// New creates an empty experiment with default settings.
func New(name string) *Experiment {
	return &Experiment{
		Name:     name,
		Settings: NewSettings(),
		byName:   make(map[string]*Routine),
	}
}

// ID returns a stable identifier for the experiment, derived from its
// name so that regenerating an unchanged experiment never changes the
// script header.
func (e *Experiment) ID() string {
	return uuid.NewSHA1(uuid.NameSpaceOID, []byte("psybuilder:"+e.Name)).String()
}

// AddRoutine appends a routine, rejecting duplicate routine names.
func (e *Experiment) AddRoutine(r *Routine) error {
	if r.Name == "" {
		return fmt.Errorf("routine needs a name")
	}
	if _, exists := e.byName[r.Name]; exists {
		return fmt.Errorf("duplicate routine name %q", r.Name)
	}
	e.Routines = append(e.Routines, r)
	e.byName[r.Name] = r
	return nil
}

// Routine returns the routine registered under name.
func (e *Experiment) Routine(name string) (*Routine, bool) {
	r, ok := e.byName[name]
	return r, ok
}

// Components returns every component in routine order then timeline
// order, the order one-time sections are emitted in.
func (e *Experiment) Components() []codegen.Component {
	var all []codegen.Component
	for _, r := range e.Routines {
		all = append(all, r.Components...)
	}
	return all
}

// UsesCondition reports whether any component's start or stop condition
// has the given kind. The generator uses it to decide whether shared
// collaborators (the mouse) need to exist in the script.
func (e *Experiment) UsesCondition(kind exptypes.ConditionKind) bool {
	for _, c := range e.Components() {
		if c.StartCond().Kind == kind || c.StopCond().Kind == kind {
			return true
		}
	}
	return false
}

// Validate checks the cross-cutting invariants that single components
// cannot see: component names unique across the whole experiment (they
// become Python variables in one namespace), non-empty routines
// referenced by the flow, and sane loop repetition counts.
func (e *Experiment) Validate() error {
	if e.Name == "" {
		return fmt.Errorf("experiment needs a name")
	}
	if len(e.Routines) == 0 {
		return fmt.Errorf("experiment %q has no routines", e.Name)
	}

	seen := make(map[string]string) // component name -> routine
	for _, r := range e.Routines {
		for _, c := range r.Components {
			if owner, dup := seen[c.Name()]; dup {
				return fmt.Errorf("component name %q used in both routine %q and routine %q", c.Name(), owner, r.Name)
			}
			seen[c.Name()] = r.Name
		}
	}

	if len(e.Flow) == 0 {
		return fmt.Errorf("experiment %q has an empty flow", e.Name)
	}
	for i, entry := range e.Flow {
		switch {
		case entry.Routine != nil && entry.Loop != nil:
			return fmt.Errorf("flow entry %d is both a routine and a loop", i)
		case entry.Routine == nil && entry.Loop == nil:
			return fmt.Errorf("flow entry %d is empty", i)
		case entry.Loop != nil:
			if entry.Loop.NReps < 1 {
				return fmt.Errorf("loop %q: nReps must be at least 1, got %d", entry.Loop.Name, entry.Loop.NReps)
			}
			if len(entry.Loop.Routines) == 0 {
				return fmt.Errorf("loop %q has no routines", entry.Loop.Name)
			}
		}
	}
	return nil
}

// FillDeviceDefaults copies the settings' device paths into tagger and
// appliance components that left theirs blank, so a file only needs to
// name the device once (or not at all, when configuration supplies it).
func (e *Experiment) FillDeviceDefaults() error {
	for _, c := range e.Components() {
		switch c.TypeTag() {
		case "tagger":
			if p, ok := c.Params().Get("address"); ok && p.Val == "" {
				if err := c.Params().Set("address", e.Settings.Value("trigger_address")); err != nil {
					return err
				}
			}
		case "appliance":
			if p, ok := c.Params().Get("port"); ok && p.Val == "" {
				if err := c.Params().Set("port", e.Settings.Value("serial_port")); err != nil {
					return err
				}
			}
		}
	}
	return nil
}
