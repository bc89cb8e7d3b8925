package components

import (
	"fmt"

	"psybuilder/internal/codegen"
	"psybuilder/pkg/exptypes"
)

// SoundComponent plays a sound file or a named note.
type SoundComponent struct {
	*Base
}

var soundSetters = map[string]string{
	"sound":  "setSound",
	"volume": "setVolume",
}

// NewSoundComponent creates a sound component with default parameters.
func NewSoundComponent(name string) codegen.Component {
	b := NewBase("sound", name)
	b.Params().Define("sound", exptypes.Param{
		Val: "A", Type: exptypes.ValTypeStr, Updates: exptypes.UpdateConstant,
		Hint: "A note name (A, Bf, ...), a frequency in Hz, or a file path", Label: "Sound",
	})
	b.Params().Define("volume", exptypes.Param{
		Val: "1", Type: exptypes.ValTypeNum, Updates: exptypes.UpdateConstant,
		Hint: "Playback volume from 0 to 1", Label: "Volume",
	})
	return &SoundComponent{Base: b}
}

// WriteExperimentStartCode imports the sound module once.
func (c *SoundComponent) WriteExperimentStartCode(w *codegen.Writer, s *codegen.Session) error {
	if s.Once("import-sound") {
		w.WriteLines("from psychopy import sound")
	}
	return nil
}

// WriteInitCode instantiates the Sound object once.
func (c *SoundComponent) WriteInitCode(w *codegen.Writer, _ *codegen.Session) error {
	snd, err := c.RequiredParam("sound")
	if err != nil {
		return err
	}
	volume, _ := c.Params().Get("volume")
	w.WriteLinesf("%s = sound.Sound(%s, volume=%s, name='%s')",
		c.Name(), snd.Literal(), volume.Literal(), c.Name())
	return nil
}

// WriteRoutineStartCode resets the status and re-applies parameters
// updated on every repeat.
func (c *SoundComponent) WriteRoutineStartCode(w *codegen.Writer, s *codegen.Session) error {
	if err := c.Base.WriteRoutineStartCode(w, s); err != nil {
		return err
	}
	c.WriteParamUpdates(w, exptypes.UpdateEveryRepeat, soundSetters)
	return nil
}

// WriteFrameCode emits the guarded play/stop block.
func (c *SoundComponent) WriteFrameCode(w *codegen.Writer, _ *codegen.Session) error {
	return c.WriteStartStopBlock(w,
		[]string{fmt.Sprintf("%s.play()", c.Name())},
		[]string{fmt.Sprintf("%s.stop()", c.Name())},
	)
}

// WriteExperimentEndCode stops any sound still playing at shutdown.
func (c *SoundComponent) WriteExperimentEndCode(w *codegen.Writer, _ *codegen.Session) error {
	w.WriteLinesf("%s.stop()", c.Name())
	return nil
}

const soundDoc = `# sound

Plays a sound via ` + "`sound.Sound`" + `: a note name, a frequency in Hz, or
an audio file path.

## Parameters

| name   | type | default | notes                                   |
|--------|------|---------|------------------------------------------|
| sound  | str  | A       | note name, frequency or file path        |
| volume | num  | 1       | playback volume 0..1                     |

## Emission

Start guard calls ` + "`.play()`" + `, stop guard calls ` + "`.stop()`" + `. A final
` + "`.stop()`" + ` is emitted at experiment end so playback never outlives the
script.
`

func init() {
	err := GetGlobalRegistry().Register(TypeInfo{
		Tag:         "sound",
		Description: "Play a note, tone or audio file",
		Doc:         soundDoc,
	}, NewSoundComponent)
	if err != nil {
		panic(fmt.Sprintf("failed to register sound component: %v", err))
	}
}
