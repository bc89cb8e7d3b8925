package components

import (
	"fmt"

	"psybuilder/internal/codegen"
	"psybuilder/pkg/exptypes"
)

// ApplianceComponent switches an external device (odor dispenser,
// vibrotactile unit, shock box) over a serial link by sending command
// strings at onset and offset.
type ApplianceComponent struct {
	*Base
}

// NewApplianceComponent creates an appliance component with default
// parameters. An empty port falls back to the experiment settings'
// serial port during validation.
func NewApplianceComponent(name string) codegen.Component {
	b := NewBase("appliance", name)
	b.Params().Define("port", exptypes.Param{
		Val: "", Type: exptypes.ValTypeStr, Updates: exptypes.UpdateNever,
		Hint: "Serial device path, e.g. /dev/ttyUSB0; empty uses the experiment setting", Label: "Serial port",
	})
	b.Params().Define("baud", exptypes.Param{
		Val: "9600", Type: exptypes.ValTypeNum, Updates: exptypes.UpdateNever,
		Hint: "Baud rate of the serial link", Label: "Baud rate",
	})
	b.Params().Define("startCommand", exptypes.Param{
		Val: "ON", Type: exptypes.ValTypeStr, Updates: exptypes.UpdateConstant,
		Hint: "Command string sent at onset", Label: "Onset command",
	})
	b.Params().Define("stopCommand", exptypes.Param{
		Val: "OFF", Type: exptypes.ValTypeStr, Updates: exptypes.UpdateConstant,
		Hint: "Command string sent at offset", Label: "Offset command",
	})
	return &ApplianceComponent{Base: b}
}

// WriteExperimentStartCode imports pyserial and defines the driver
// helper class, each exactly once per generation session.
func (c *ApplianceComponent) WriteExperimentStartCode(w *codegen.Writer, s *codegen.Session) error {
	if s.Once("import-serial") {
		w.WriteLines("import serial")
	}
	if s.Once("class-appliancedriver") {
		w.BlankLine()
		w.WriteLines("class ApplianceDriver:")
		w.Indent()
		w.WriteLines("def __init__(self, link, startCommand, stopCommand):")
		w.Indent()
		w.WriteLines("self.link = link")
		w.WriteLines("self.startCommand = startCommand")
		w.WriteLines("self.stopCommand = stopCommand")
		w.WriteLines("self.status = NOT_STARTED")
		if err := w.Dedent(); err != nil {
			return err
		}
		w.BlankLine()
		w.WriteLines("def send(self, command):")
		w.Indent()
		w.WriteLines("self.link.write(command.encode() + b'\\n')")
		if err := w.Dedent(); err != nil {
			return err
		}
		if err := w.Dedent(); err != nil {
			return err
		}
	}
	return nil
}

// WriteInitCode opens the shared serial link on first use and binds
// this appliance's commands to it.
func (c *ApplianceComponent) WriteInitCode(w *codegen.Writer, s *codegen.Session) error {
	port, err := c.RequiredParam("port")
	if err != nil {
		return err
	}
	baud, _ := c.Params().Get("baud")
	startCmd, _ := c.Params().Get("startCommand")
	stopCmd, _ := c.Params().Get("stopCommand")

	if s.Once("appliance-link") {
		w.WriteLinesf("applianceLink = serial.Serial(%s, %s, timeout=0)", port.Literal(), baud.Literal())
	}
	w.WriteLinesf("%s = ApplianceDriver(applianceLink, %s, %s)",
		c.Name(), startCmd.Literal(), stopCmd.Literal())
	return nil
}

// WriteFrameCode emits the guarded command sends.
func (c *ApplianceComponent) WriteFrameCode(w *codegen.Writer, _ *codegen.Session) error {
	return c.WriteStartStopBlock(w,
		[]string{fmt.Sprintf("%s.send(%s.startCommand)", c.Name(), c.Name())},
		[]string{fmt.Sprintf("%s.send(%s.stopCommand)", c.Name(), c.Name())},
	)
}

// WriteExperimentEndCode sends the offset command. Closing the shared
// link is deferred to session teardown so it lands after every
// appliance's send.
func (c *ApplianceComponent) WriteExperimentEndCode(w *codegen.Writer, s *codegen.Session) error {
	w.WriteLinesf("%s.send(%s.stopCommand)", c.Name(), c.Name())
	s.Teardown("appliance-link-close", "applianceLink.close()")
	return nil
}

const applianceDoc = `# appliance

Switches an external device over a serial link by sending command
strings at onset and offset. Devices on the same experiment share one
link; the first appliance opens it.

## Parameters

| name         | type | default | notes                                      |
|--------------|------|---------|---------------------------------------------|
| port         | str  |         | serial device path; empty uses the experiment setting |
| baud         | num  | 9600    | link baud rate                              |
| startCommand | str  | ON      | command sent at onset                       |
| stopCommand  | str  | OFF     | command sent at offset                      |

## Emission

Commands go through a small ` + "`ApplianceDriver`" + ` helper emitted once.
At experiment end every appliance sends its offset command and the
shared link is closed.
`

func init() {
	err := GetGlobalRegistry().Register(TypeInfo{
		Tag:         "appliance",
		Description: "Switch an external device over a serial link",
		Doc:         applianceDoc,
	}, NewApplianceComponent)
	if err != nil {
		panic(fmt.Sprintf("failed to register appliance component: %v", err))
	}
}
