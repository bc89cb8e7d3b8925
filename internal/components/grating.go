package components

import (
	"fmt"

	"psybuilder/internal/codegen"
	"psybuilder/pkg/exptypes"
)

// GratingComponent draws a patch stimulus: a texture (sinusoid, square
// wave, ...) seen through a mask.
type GratingComponent struct {
	*Base
}

var gratingSetters = map[string]string{
	"tex":      "setTex",
	"mask":     "setMask",
	"sf":       "setSF",
	"phase":    "setPhase",
	"ori":      "setOri",
	"pos":      "setPos",
	"size":     "setSize",
	"contrast": "setContrast",
}

// NewGratingComponent creates a grating component with default
// parameters.
func NewGratingComponent(name string) codegen.Component {
	b := NewBase("grating", name)
	b.Params().Define("tex", exptypes.Param{
		Val: "sin", Type: exptypes.ValTypeStr, Updates: exptypes.UpdateConstant,
		AllowedVals: []string{"sin", "sqr", "saw", "tri"},
		Hint:        "Texture carried by the patch", Label: "Texture",
	})
	b.Params().Define("mask", exptypes.Param{
		Val: "gauss", Type: exptypes.ValTypeStr, Updates: exptypes.UpdateConstant,
		AllowedVals: []string{"gauss", "circle", "raisedCos", "None"},
		Hint:        "Shape of the aperture the texture shows through", Label: "Mask",
	})
	b.Params().Define("sf", exptypes.Param{
		Val: "4", Type: exptypes.ValTypeNum, Updates: exptypes.UpdateConstant,
		Hint: "Spatial frequency in cycles per unit", Label: "Spatial frequency",
	})
	b.Params().Define("phase", exptypes.Param{
		Val: "0.0", Type: exptypes.ValTypeCode, Updates: exptypes.UpdateConstant,
		Hint: "Phase of the texture in cycles; use an expression of t for drift", Label: "Phase",
	})
	b.Params().Define("ori", exptypes.Param{
		Val: "0", Type: exptypes.ValTypeNum, Updates: exptypes.UpdateConstant,
		Hint: "Orientation in degrees", Label: "Orientation",
	})
	b.Params().Define("pos", exptypes.Param{
		Val: "(0, 0)", Type: exptypes.ValTypeList, Updates: exptypes.UpdateConstant,
		Hint: "Position (x, y) in window units", Label: "Position",
	})
	b.Params().Define("size", exptypes.Param{
		Val: "(0.5, 0.5)", Type: exptypes.ValTypeList, Updates: exptypes.UpdateConstant,
		Hint: "Size (w, h) in window units", Label: "Size",
	})
	b.Params().Define("contrast", exptypes.Param{
		Val: "1", Type: exptypes.ValTypeNum, Updates: exptypes.UpdateConstant,
		Hint: "Michelson contrast from 0 to 1", Label: "Contrast",
	})
	return &GratingComponent{Base: b}
}

// WriteExperimentStartCode imports the visual stimulus module once.
func (c *GratingComponent) WriteExperimentStartCode(w *codegen.Writer, s *codegen.Session) error {
	if s.Once("import-visual") {
		w.WriteLines("from psychopy import visual")
	}
	return nil
}

// WriteInitCode instantiates the GratingStim once.
func (c *GratingComponent) WriteInitCode(w *codegen.Writer, _ *codegen.Session) error {
	tex, err := c.RequiredParam("tex")
	if err != nil {
		return err
	}
	mask, _ := c.Params().Get("mask")
	sf, _ := c.Params().Get("sf")
	phase, _ := c.Params().Get("phase")
	ori, _ := c.Params().Get("ori")
	pos, _ := c.Params().Get("pos")
	size, _ := c.Params().Get("size")
	contrast, _ := c.Params().Get("contrast")

	w.WriteLinesf("%s = visual.GratingStim(win=win, name='%s',", c.Name(), c.Name())
	w.WriteLinesf("    tex=%s, mask=%s, sf=%s, phase=%s,", tex.Literal(), mask.Literal(), sf.Literal(), phase.Literal())
	w.WriteLinesf("    ori=%s, pos=%s, size=%s, contrast=%s)", ori.Literal(), pos.Literal(), size.Literal(), contrast.Literal())
	return nil
}

// WriteRoutineStartCode resets the status and re-applies parameters
// updated on every repeat.
func (c *GratingComponent) WriteRoutineStartCode(w *codegen.Writer, s *codegen.Session) error {
	if err := c.Base.WriteRoutineStartCode(w, s); err != nil {
		return err
	}
	c.WriteParamUpdates(w, exptypes.UpdateEveryRepeat, gratingSetters)
	return nil
}

// WriteFrameCode emits the guarded draw block and any per-frame
// parameter updates (drifting phase is the usual case).
func (c *GratingComponent) WriteFrameCode(w *codegen.Writer, _ *codegen.Session) error {
	err := c.WriteStartStopBlock(w,
		[]string{fmt.Sprintf("%s.setAutoDraw(True)", c.Name())},
		[]string{fmt.Sprintf("%s.setAutoDraw(False)", c.Name())},
	)
	if err != nil {
		return err
	}

	if c.HasUpdates(exptypes.UpdateEveryFrame, gratingSetters) {
		w.WriteLinesf("if %s.status == %s:  # only update while being drawn", c.Name(), exptypes.StatusStarted)
		w.Indent()
		c.WriteParamUpdates(w, exptypes.UpdateEveryFrame, gratingSetters)
		if err := w.Dedent(); err != nil {
			return err
		}
	}
	return nil
}

const gratingDoc = `# grating

Draws a patch stimulus via ` + "`visual.GratingStim`" + `: a texture seen
through a mask, typically used for sinusoidal gratings and Gabors.

## Parameters

| name     | type | default    | notes                                  |
|----------|------|------------|-----------------------------------------|
| tex      | str  | sin        | sin, sqr, saw or tri                    |
| mask     | str  | gauss      | gauss, circle, raisedCos or None        |
| sf       | num  | 4          | spatial frequency, cycles per unit      |
| phase    | code | 0.0        | set scope "set every frame" with an expression of t for drift |
| ori      | num  | 0          | orientation in degrees                  |
| pos      | list | (0, 0)     | position in window units                |
| size     | list | (0.5, 0.5) | size in window units                    |
| contrast | num  | 1          | Michelson contrast 0..1                 |

## Emission

Same draw lifecycle as text. A phase parameter with scope "set every
frame" produces a drifting grating.
`

func init() {
	err := GetGlobalRegistry().Register(TypeInfo{
		Tag:         "grating",
		Description: "Draw a grating or Gabor patch",
		Doc:         gratingDoc,
	}, NewGratingComponent)
	if err != nil {
		panic(fmt.Sprintf("failed to register grating component: %v", err))
	}
}
