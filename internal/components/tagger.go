package components

import (
	"fmt"

	"psybuilder/internal/codegen"
	"psybuilder/pkg/exptypes"
)

// TaggerComponent writes event markers to a parallel trigger port, for
// synchronizing the experiment timeline with an external recorder
// (EEG/EMG amplifier, eye tracker).
type TaggerComponent struct {
	*Base
}

// NewTaggerComponent creates a tagger component with default
// parameters. An empty address falls back to the experiment settings'
// trigger address during validation.
func NewTaggerComponent(name string) codegen.Component {
	b := NewBase("tagger", name)
	b.Params().Define("address", exptypes.Param{
		Val: "", Type: exptypes.ValTypeCode, Updates: exptypes.UpdateNever,
		Hint: "Parallel port address, e.g. 0x0378; empty uses the experiment setting", Label: "Port address",
	})
	b.Params().Define("startData", exptypes.Param{
		Val: "16", Type: exptypes.ValTypeNum, Updates: exptypes.UpdateConstant,
		Hint: "Byte written to the port at onset", Label: "Onset code",
	})
	b.Params().Define("stopData", exptypes.Param{
		Val: "0", Type: exptypes.ValTypeNum, Updates: exptypes.UpdateConstant,
		Hint: "Byte written to the port at offset", Label: "Offset code",
	})
	return &TaggerComponent{Base: b}
}

// WriteExperimentStartCode imports the parallel-port module and defines
// the marker helper class, each exactly once per generation session.
func (c *TaggerComponent) WriteExperimentStartCode(w *codegen.Writer, s *codegen.Session) error {
	if s.Once("import-parallel") {
		w.WriteLines("from psychopy import parallel")
	}
	if s.Once("class-eventmarker") {
		w.BlankLine()
		w.WriteLines("class EventMarker:")
		w.Indent()
		w.WriteLines("def __init__(self, port, startData, stopData):")
		w.Indent()
		w.WriteLines("self.port = port")
		w.WriteLines("self.startData = startData")
		w.WriteLines("self.stopData = stopData")
		w.WriteLines("self.status = NOT_STARTED")
		if err := w.Dedent(); err != nil {
			return err
		}
		if err := w.Dedent(); err != nil {
			return err
		}
	}
	return nil
}

// WriteInitCode opens the trigger port on first use and binds this
// tagger's marker codes to it. Only the first tagger (or appliance) in
// a generation session emits the port request; later ones reuse it.
func (c *TaggerComponent) WriteInitCode(w *codegen.Writer, s *codegen.Session) error {
	addr, err := c.RequiredParam("address")
	if err != nil {
		return err
	}
	startData, _ := c.Params().Get("startData")
	stopData, _ := c.Params().Get("stopData")

	if s.Once("trigger-port") {
		w.WriteLinesf("triggerPort = parallel.ParallelPort(address=%s)", addr.Literal())
	}
	w.WriteLinesf("%s = EventMarker(triggerPort, %s, %s)",
		c.Name(), startData.Literal(), stopData.Literal())
	return nil
}

// WriteFrameCode emits the guarded marker writes.
func (c *TaggerComponent) WriteFrameCode(w *codegen.Writer, _ *codegen.Session) error {
	return c.WriteStartStopBlock(w,
		[]string{fmt.Sprintf("%s.port.setData(%s.startData)", c.Name(), c.Name())},
		[]string{fmt.Sprintf("%s.port.setData(%s.stopData)", c.Name(), c.Name())},
	)
}

// WriteExperimentEndCode defers zeroing the trigger lines to session
// teardown, once no matter how many taggers the experiment holds.
func (c *TaggerComponent) WriteExperimentEndCode(_ *codegen.Writer, s *codegen.Session) error {
	s.Teardown("trigger-port-reset", "triggerPort.setData(0)")
	return nil
}

const taggerDoc = `# tagger

Writes event-marker bytes to a parallel trigger port so an external
recorder (EEG/EMG amplifier, eye tracker) can align its trace with the
experiment timeline.

## Parameters

| name      | type | default | notes                                        |
|-----------|------|---------|-----------------------------------------------|
| address   | code |         | port address (0x0378); empty uses the experiment setting |
| startData | num  | 16      | byte written at onset                         |
| stopData  | num  | 0       | byte written at offset                        |

## Emission

The first tagger in a script opens the port
(` + "`triggerPort = parallel.ParallelPort(...)`" + `); every tagger then binds
its codes through a small ` + "`EventMarker`" + ` helper emitted once. Trigger
lines are zeroed once at experiment end.
`

func init() {
	err := GetGlobalRegistry().Register(TypeInfo{
		Tag:         "tagger",
		Description: "Write event markers to a parallel trigger port",
		Doc:         taggerDoc,
	}, NewTaggerComponent)
	if err != nil {
		panic(fmt.Sprintf("failed to register tagger component: %v", err))
	}
}
