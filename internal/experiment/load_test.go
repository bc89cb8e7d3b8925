package experiment

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"psybuilder/internal/version"
	"psybuilder/pkg/exptypes"
)

const minimalFile = `
experiment: stroop
psybuilder_version: "0.3.0"
routines:
  - name: trial
    components:
      - type: text
        name: stim1
        start: {kind: "time (s)", val: "0.0"}
        stop: {kind: "duration (s)", val: "1.0"}
        params:
          text: Welcome
flow:
  - routine: trial
`

func TestLoad_Minimal(t *testing.T) {
	exp, err := Load([]byte(minimalFile))
	require.NoError(t, err)

	assert.Equal(t, "stroop", exp.Name)
	assert.Equal(t, "0.3.0", exp.FileVersion)
	require.Len(t, exp.Routines, 1)
	require.Len(t, exp.Routines[0].Components, 1)

	c := exp.Routines[0].Components[0]
	assert.Equal(t, "stim1", c.Name())
	assert.Equal(t, "text", c.TypeTag())
	assert.Equal(t, exptypes.CondTime, c.StartCond().Kind)
	assert.Equal(t, exptypes.CondDurationTime, c.StopCond().Kind)

	p, ok := c.Params().Get("text")
	require.True(t, ok)
	assert.Equal(t, "Welcome", p.Val)

	require.Len(t, exp.Flow, 1)
	assert.Same(t, exp.Routines[0], exp.Flow[0].Routine)
}

func TestLoad_DefaultFlow(t *testing.T) {
	exp, err := Load([]byte(`
experiment: twoscreens
psybuilder_version: "0.3.0"
routines:
  - name: instructions
    components:
      - {type: text, name: instrText}
  - name: trial
    components:
      - {type: text, name: stim1}
`))
	require.NoError(t, err)
	require.Len(t, exp.Flow, 2)
	assert.Equal(t, "instructions", exp.Flow[0].Routine.Name)
	assert.Equal(t, "trial", exp.Flow[1].Routine.Name)
}

func TestLoad_LoopFlow(t *testing.T) {
	exp, err := Load([]byte(`
experiment: looped
psybuilder_version: "0.3.0"
routines:
  - name: trial
    components:
      - {type: text, name: stim1}
flow:
  - loop:
      name: trials
      nReps: 5
      routines: [trial]
`))
	require.NoError(t, err)
	require.Len(t, exp.Flow, 1)
	loop := exp.Flow[0].Loop
	require.NotNil(t, loop)
	assert.Equal(t, "trials", loop.Name)
	assert.Equal(t, 5, loop.NReps)
	require.Len(t, loop.Routines, 1)
}

func TestLoad_UpdateScopes(t *testing.T) {
	exp, err := Load([]byte(`
experiment: drifting
psybuilder_version: "0.3.0"
routines:
  - name: trial
    components:
      - type: grating
        name: grat
        params:
          phase: t * 2
        updates:
          phase: set every frame
`))
	require.NoError(t, err)

	p, ok := exp.Routines[0].Components[0].Params().Get("phase")
	require.True(t, ok)
	assert.Equal(t, exptypes.UpdateEveryFrame, p.Updates)
	assert.Equal(t, "t * 2", p.Val)
}

func TestLoad_SettingsAndDeviceDefaults(t *testing.T) {
	exp, err := Load([]byte(`
experiment: tagged
psybuilder_version: "0.3.0"
settings:
  trigger_address: "0x03BC"
  serial_port: /dev/ttyACM0
routines:
  - name: trial
    components:
      - {type: tagger, name: tag1}
      - {type: appliance, name: pump}
`))
	require.NoError(t, err)

	tag := exp.Routines[0].Components[0]
	p, _ := tag.Params().Get("address")
	assert.Equal(t, "0x03BC", p.Val, "blank tagger address should inherit the settings value")

	pump := exp.Routines[0].Components[1]
	p, _ = pump.Params().Get("port")
	assert.Equal(t, "/dev/ttyACM0", p.Val)
}

func TestLoad_WithDeviceDefaults(t *testing.T) {
	src := `
experiment: tagged
psybuilder_version: "0.3.0"
routines:
  - name: trial
    components:
      - {type: tagger, name: tag1}
`
	exp, err := Load([]byte(src), WithDeviceDefaults("0x0278", "/dev/ttyS1"))
	require.NoError(t, err)

	p, _ := exp.Routines[0].Components[0].Params().Get("address")
	assert.Equal(t, "0x0278", p.Val, "configured default should flow through settings into the tagger")

	// The file's own settings still win over configured defaults
	exp, err = Load([]byte(`
experiment: tagged
psybuilder_version: "0.3.0"
settings:
  trigger_address: "0x03BC"
routines:
  - name: trial
    components:
      - {type: tagger, name: tag1}
`), WithDeviceDefaults("0x0278", "/dev/ttyS1"))
	require.NoError(t, err)
	p, _ = exp.Routines[0].Components[0].Params().Get("address")
	assert.Equal(t, "0x03BC", p.Val)
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name        string
		yaml        string
		errContains string
	}{
		{
			name:        "missing experiment name",
			yaml:        "routines:\n  - name: trial\n    components:\n      - {type: text, name: a}\n",
			errContains: "missing the 'experiment' name",
		},
		{
			name:        "unknown component type",
			yaml:        "experiment: x\nroutines:\n  - name: trial\n    components:\n      - {type: hologram, name: h}\n",
			errContains: "unknown component type",
		},
		{
			name:        "unknown parameter",
			yaml:        "experiment: x\nroutines:\n  - name: trial\n    components:\n      - {type: text, name: a, params: {flavor: mint}}\n",
			errContains: `unknown parameter "flavor"`,
		},
		{
			name:        "disallowed parameter value",
			yaml:        "experiment: x\nroutines:\n  - name: trial\n    components:\n      - {type: grating, name: g, params: {tex: plaid}}\n",
			errContains: "does not allow",
		},
		{
			name:        "duration as start condition",
			yaml:        "experiment: x\nroutines:\n  - name: trial\n    components:\n      - {type: text, name: a, start: {kind: \"duration (s)\", val: \"1\"}}\n",
			errContains: "not a valid start condition",
		},
		{
			name:        "duplicate component names across routines",
			yaml:        "experiment: x\nroutines:\n  - name: r1\n    components:\n      - {type: text, name: a}\n  - name: r2\n    components:\n      - {type: text, name: a}\n",
			errContains: `component name "a" used in both`,
		},
		{
			name:        "duplicate routine names",
			yaml:        "experiment: x\nroutines:\n  - name: r1\n    components:\n      - {type: text, name: a}\n  - name: r1\n    components:\n      - {type: text, name: b}\n",
			errContains: "duplicate routine name",
		},
		{
			name:        "flow references unknown routine",
			yaml:        "experiment: x\nroutines:\n  - name: trial\n    components:\n      - {type: text, name: a}\nflow:\n  - routine: warmup\n",
			errContains: `unknown routine "warmup"`,
		},
		{
			name:        "loop with zero reps",
			yaml:        "experiment: x\nroutines:\n  - name: trial\n    components:\n      - {type: text, name: a}\nflow:\n  - loop: {name: trials, nReps: 0, routines: [trial]}\n",
			errContains: "nReps must be at least 1",
		},
		{
			name:        "unknown update scope",
			yaml:        "experiment: x\nroutines:\n  - name: trial\n    components:\n      - {type: text, name: a, updates: {text: hourly}}\n",
			errContains: `unknown update scope "hourly"`,
		},
		{
			name:        "incompatible file version",
			yaml:        "experiment: x\npsybuilder_version: \"2.0.0\"\nroutines:\n  - name: trial\n    components:\n      - {type: text, name: a}\n",
			errContains: "requires psybuilder 2.x",
		},
		{
			name:        "not yaml",
			yaml:        "{{{",
			errContains: "failed to parse",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load([]byte(tt.yaml))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errContains)
		})
	}
}

func TestLoad_MissingVersionAccepted(t *testing.T) {
	// No psybuilder_version: compatibility check is skipped with a warning
	_, err := Load([]byte("experiment: x\nroutines:\n  - name: trial\n    components:\n      - {type: text, name: a}\n"))
	assert.NoError(t, err)
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "stroop"+FileExt)
	require.NoError(t, os.WriteFile(path, []byte(minimalFile), 0644))

	exp, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "stroop", exp.Name)

	_, err = LoadFile(filepath.Join(dir, "stroop.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), FileExt)

	_, err = LoadFile(filepath.Join(dir, "missing"+FileExt))
	require.Error(t, err)
}

func TestExperimentID_Stable(t *testing.T) {
	a := New("stroop")
	b := New("stroop")
	c := New("posner")
	assert.Equal(t, a.ID(), b.ID())
	assert.NotEqual(t, a.ID(), c.ID())
}

func TestFileVersionMatchesToolMajor(t *testing.T) {
	// The loader accepts files stamped with the current tool version
	require.NoError(t, version.CheckFileCompatibility(version.GetVersion()))
}
