package components

import (
	"fmt"

	"psybuilder/internal/codegen"
	"psybuilder/pkg/exptypes"
)

// TextComponent draws a string of text on the display window.
type TextComponent struct {
	*Base
}

var textSetters = map[string]string{
	"text":    "setText",
	"font":    "setFont",
	"pos":     "setPos",
	"height":  "setHeight",
	"color":   "setColor",
	"opacity": "setOpacity",
}

// NewTextComponent creates a text component with default parameters.
func NewTextComponent(name string) codegen.Component {
	b := NewBase("text", name)
	b.Params().Define("text", exptypes.Param{
		Val: "Hello", Type: exptypes.ValTypeStr, Updates: exptypes.UpdateConstant,
		Hint: "The text to display", Label: "Text",
	})
	b.Params().Define("font", exptypes.Param{
		Val: "Arial", Type: exptypes.ValTypeStr, Updates: exptypes.UpdateConstant,
		Hint: "Font family name", Label: "Font",
	})
	b.Params().Define("pos", exptypes.Param{
		Val: "(0, 0)", Type: exptypes.ValTypeList, Updates: exptypes.UpdateConstant,
		Hint: "Position (x, y) in window units", Label: "Position",
	})
	b.Params().Define("height", exptypes.Param{
		Val: "0.1", Type: exptypes.ValTypeNum, Updates: exptypes.UpdateConstant,
		Hint: "Letter height in window units", Label: "Letter height",
	})
	b.Params().Define("color", exptypes.Param{
		Val: "white", Type: exptypes.ValTypeStr, Updates: exptypes.UpdateConstant,
		Hint: "Foreground color", Label: "Color",
	})
	b.Params().Define("opacity", exptypes.Param{
		Val: "1", Type: exptypes.ValTypeNum, Updates: exptypes.UpdateConstant,
		Hint: "Opacity from 0 (transparent) to 1 (opaque)", Label: "Opacity",
	})
	return &TextComponent{Base: b}
}

// WriteExperimentStartCode imports the visual stimulus module once.
func (c *TextComponent) WriteExperimentStartCode(w *codegen.Writer, s *codegen.Session) error {
	if s.Once("import-visual") {
		w.WriteLines("from psychopy import visual")
	}
	return nil
}

// WriteInitCode instantiates the TextStim once with the constant
// parameter values.
func (c *TextComponent) WriteInitCode(w *codegen.Writer, _ *codegen.Session) error {
	text, err := c.RequiredParam("text")
	if err != nil {
		return err
	}
	font, _ := c.Params().Get("font")
	pos, _ := c.Params().Get("pos")
	height, _ := c.Params().Get("height")
	color, _ := c.Params().Get("color")
	opacity, _ := c.Params().Get("opacity")

	w.WriteLinesf("%s = visual.TextStim(win=win, name='%s',", c.Name(), c.Name())
	w.WriteLinesf("    text=%s, font=%s,", text.Literal(), font.Literal())
	w.WriteLinesf("    pos=%s, height=%s,", pos.Literal(), height.Literal())
	w.WriteLinesf("    color=%s, opacity=%s)", color.Literal(), opacity.Literal())
	return nil
}

// WriteRoutineStartCode resets the status and re-applies parameters
// updated on every repeat.
func (c *TextComponent) WriteRoutineStartCode(w *codegen.Writer, s *codegen.Session) error {
	if err := c.Base.WriteRoutineStartCode(w, s); err != nil {
		return err
	}
	c.WriteParamUpdates(w, exptypes.UpdateEveryRepeat, textSetters)
	return nil
}

// WriteFrameCode emits the guarded draw block and any per-frame
// parameter updates.
func (c *TextComponent) WriteFrameCode(w *codegen.Writer, _ *codegen.Session) error {
	err := c.WriteStartStopBlock(w,
		[]string{fmt.Sprintf("%s.setAutoDraw(True)", c.Name())},
		[]string{fmt.Sprintf("%s.setAutoDraw(False)", c.Name())},
	)
	if err != nil {
		return err
	}

	if c.HasUpdates(exptypes.UpdateEveryFrame, textSetters) {
		w.WriteLinesf("if %s.status == %s:  # only update while being drawn", c.Name(), exptypes.StatusStarted)
		w.Indent()
		c.WriteParamUpdates(w, exptypes.UpdateEveryFrame, textSetters)
		if err := w.Dedent(); err != nil {
			return err
		}
	}
	return nil
}

const textDoc = `# text

Draws a string of text on the display window using ` + "`visual.TextStim`" + `.

## Parameters

| name    | type | default  | notes                                  |
|---------|------|----------|----------------------------------------|
| text    | str  | Hello    | the string to display                  |
| font    | str  | Arial    | font family                            |
| pos     | list | (0, 0)   | position in window units               |
| height  | num  | 0.1      | letter height in window units          |
| color   | str  | white    | foreground color                       |
| opacity | num  | 1        | 0 transparent .. 1 opaque              |

## Emission

Start guard calls ` + "`setAutoDraw(True)`" + `, stop guard calls
` + "`setAutoDraw(False)`" + `. Parameters with scope "set every repeat" are
re-applied at routine start; "set every frame" parameters are applied
inside a STARTED-only block each refresh.
`

func init() {
	err := GetGlobalRegistry().Register(TypeInfo{
		Tag:         "text",
		Description: "Display a string of text",
		Doc:         textDoc,
	}, NewTextComponent)
	if err != nil {
		panic(fmt.Sprintf("failed to register text component: %v", err))
	}
}
