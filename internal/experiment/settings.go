// Package experiment holds the in-memory experiment model: settings,
// routines of components, and the flow of routines and loops that the
// generator walks, plus the YAML loader that builds the model from an
// experiment file.
package experiment

import (
	"fmt"
	"sort"

	"psybuilder/internal/codegen"
	"psybuilder/pkg/exptypes"
)

// Settings is the distinguished component-like holder of experiment-wide
// parameters: the display window, timing clocks, and default device
// paths that components fall back to.
type Settings struct {
	params *exptypes.ParamSet
}

// NewSettings creates experiment settings with default parameters.
func NewSettings() *Settings {
	ps := exptypes.NewParamSet()
	ps.Define("window_size", exptypes.Param{
		Val: "(1024, 768)", Type: exptypes.ValTypeList, Updates: exptypes.UpdateNever,
		Hint: "Window size (w, h) in pixels", Label: "Window size",
	})
	ps.Define("full_screen", exptypes.Param{
		Val: "false", Type: exptypes.ValTypeBool, Updates: exptypes.UpdateNever,
		Hint: "Run full screen", Label: "Full screen",
	})
	ps.Define("units", exptypes.Param{
		Val: "height", Type: exptypes.ValTypeStr, Updates: exptypes.UpdateNever,
		AllowedVals: []string{"height", "norm", "pix", "deg", "cm"},
		Hint:        "Default spatial units for stimuli", Label: "Units",
	})
	ps.Define("background_color", exptypes.Param{
		Val: "grey", Type: exptypes.ValTypeStr, Updates: exptypes.UpdateNever,
		Hint: "Window background color", Label: "Background color",
	})
	ps.Define("trigger_address", exptypes.Param{
		Val: "0x0378", Type: exptypes.ValTypeCode, Updates: exptypes.UpdateNever,
		Hint: "Default parallel-port address for tagger components", Label: "Trigger address",
	})
	ps.Define("serial_port", exptypes.Param{
		Val: "/dev/ttyUSB0", Type: exptypes.ValTypeStr, Updates: exptypes.UpdateNever,
		Hint: "Default serial device path for appliance components", Label: "Serial port",
	})
	return &Settings{params: ps}
}

// Params returns the ordered settings parameters.
func (s *Settings) Params() *exptypes.ParamSet { return s.params }

// Apply sets parameter values from a name->value map, walking names in
// sorted order so errors are deterministic.
func (s *Settings) Apply(vals map[string]string) error {
	names := make([]string, 0, len(vals))
	for name := range vals {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		if err := s.params.Set(name, vals[name]); err != nil {
			return fmt.Errorf("settings: %w", err)
		}
	}
	return nil
}

// Value returns the current value of a settings parameter, or the empty
// string when it is not defined.
func (s *Settings) Value(name string) string {
	p, ok := s.params.Get(name)
	if !ok {
		return ""
	}
	return p.Val
}

// WriteExperimentStartCode imports the modules every generated script
// needs: core/event unconditionally and visual for the window, the
// latter claimed through the session so stimulus components do not
// repeat it.
func (s *Settings) WriteExperimentStartCode(w *codegen.Writer, sess *codegen.Session) error {
	w.WriteLines("from psychopy import core, event")
	w.WriteLines("from psychopy.constants import NOT_STARTED, STARTED, FINISHED")
	if sess.Once("import-visual") {
		w.WriteLines("from psychopy import visual")
	}
	return nil
}

// WriteSetupCode opens the window and creates the clocks. withMouse
// additionally creates the shared mouse used by mouse-click conditions.
func (s *Settings) WriteSetupCode(w *codegen.Writer, withMouse bool) error {
	size, _ := s.params.Get("window_size")
	fullScreen, _ := s.params.Get("full_screen")
	units, _ := s.params.Get("units")
	bg, _ := s.params.Get("background_color")

	w.WriteLinesf("win = visual.Window(size=%s, fullscr=%s,", size.Literal(), fullScreen.Literal())
	w.WriteLinesf("    units=%s, color=%s)", units.Literal(), bg.Literal())
	w.WriteLines("globalClock = core.Clock()")
	w.WriteLines("routineTimer = core.Clock()")
	if withMouse {
		w.WriteLines("mouse = event.Mouse(win=win)")
	}
	return nil
}
