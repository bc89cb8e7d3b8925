package components

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"psybuilder/internal/codegen"
	"psybuilder/pkg/exptypes"
)

func TestTaggerComponent_PortRequestedOnce(t *testing.T) {
	s := codegen.NewSession(false)

	tag1 := NewTaggerComponent("tag1").(*TaggerComponent)
	tag2 := NewTaggerComponent("tag2").(*TaggerComponent)
	require.NoError(t, tag1.ApplyParams(map[string]string{"address": "0x0378"}))
	require.NoError(t, tag2.ApplyParams(map[string]string{"address": "0x0378", "startData": "32"}))

	w := codegen.NewWriter()
	require.NoError(t, tag1.WriteInitCode(w, s))
	require.NoError(t, tag2.WriteInitCode(w, s))
	out := w.String()

	assert.Equal(t, 1, strings.Count(out, "triggerPort = parallel.ParallelPort(address=0x0378)"),
		"port must be opened exactly once per generation session")
	assert.Contains(t, out, "tag1 = EventMarker(triggerPort, 16, 0)")
	assert.Contains(t, out, "tag2 = EventMarker(triggerPort, 32, 0)")

	// A fresh session re-emits the port request
	w2 := codegen.NewWriter()
	require.NoError(t, tag1.WriteInitCode(w2, codegen.NewSession(false)))
	assert.Contains(t, w2.String(), "triggerPort = parallel.ParallelPort")
}

func TestTaggerComponent_MissingAddress(t *testing.T) {
	tag := NewTaggerComponent("tag1").(*TaggerComponent)

	w := codegen.NewWriter()
	err := tag.WriteInitCode(w, codegen.NewSession(false))
	require.Error(t, err)
	assert.Contains(t, err.Error(), `"address"`)
	assert.Contains(t, err.Error(), "tag1")
}

func TestTaggerComponent_HelperClassOnce(t *testing.T) {
	s := codegen.NewSession(false)
	tag1 := NewTaggerComponent("tag1").(*TaggerComponent)
	tag2 := NewTaggerComponent("tag2").(*TaggerComponent)

	w := codegen.NewWriter()
	require.NoError(t, tag1.WriteExperimentStartCode(w, s))
	require.NoError(t, tag2.WriteExperimentStartCode(w, s))
	out := w.String()

	assert.Equal(t, 1, strings.Count(out, "from psychopy import parallel"))
	assert.Equal(t, 1, strings.Count(out, "class EventMarker:"))
	assert.Equal(t, 0, w.Level())
}

func TestTaggerComponent_FrameAndShutdown(t *testing.T) {
	tag := NewTaggerComponent("tag1").(*TaggerComponent)
	require.NoError(t, tag.SetConditions(
		exptypes.Condition{Kind: exptypes.CondStarted, Val: "stim1"},
		exptypes.Condition{Kind: exptypes.CondDurationFrames, Val: "1"},
	))
	s := codegen.NewSession(false)

	frame := emit(t, tag.WriteFrameCode, s)
	assert.Contains(t, frame, "if stim1.status == STARTED and tag1.status == NOT_STARTED:")
	assert.Contains(t, frame, "tag1.port.setData(tag1.startData)")
	assert.Contains(t, frame, "if tag1.status == STARTED and frameN >= (tag1.frameNStart + 1):")
	assert.Contains(t, frame, "tag1.port.setData(tag1.stopData)")

	// Trigger lines are zeroed once in teardown even with several taggers
	w := codegen.NewWriter()
	tag2 := NewTaggerComponent("tag2").(*TaggerComponent)
	require.NoError(t, tag.WriteExperimentEndCode(w, s))
	require.NoError(t, tag2.WriteExperimentEndCode(w, s))
	assert.Empty(t, w.String(), "the reset belongs to session teardown, not any one tagger")
	assert.Equal(t, []string{"triggerPort.setData(0)"}, s.TeardownLines())
}

func TestApplianceComponent_SharedLink(t *testing.T) {
	s := codegen.NewSession(false)
	dev1 := NewApplianceComponent("pump").(*ApplianceComponent)
	dev2 := NewApplianceComponent("fan").(*ApplianceComponent)
	require.NoError(t, dev1.ApplyParams(map[string]string{"port": "/dev/ttyUSB0"}))
	require.NoError(t, dev2.ApplyParams(map[string]string{"port": "/dev/ttyUSB0", "startCommand": "FAN ON", "stopCommand": "FAN OFF"}))

	w := codegen.NewWriter()
	require.NoError(t, dev1.WriteInitCode(w, s))
	require.NoError(t, dev2.WriteInitCode(w, s))
	out := w.String()

	assert.Equal(t, 1, strings.Count(out, `applianceLink = serial.Serial("/dev/ttyUSB0", 9600, timeout=0)`))
	assert.Contains(t, out, `pump = ApplianceDriver(applianceLink, "ON", "OFF")`)
	assert.Contains(t, out, `fan = ApplianceDriver(applianceLink, "FAN ON", "FAN OFF")`)
}

func TestApplianceComponent_Emission(t *testing.T) {
	dev := NewApplianceComponent("pump").(*ApplianceComponent)
	require.NoError(t, dev.ApplyParams(map[string]string{"port": "/dev/ttyACM1"}))
	require.NoError(t, dev.SetConditions(
		exptypes.Condition{Kind: exptypes.CondTime, Val: "2.0"},
		exptypes.Condition{Kind: exptypes.CondDurationTime, Val: "0.5"},
	))
	s := codegen.NewSession(false)

	start := emit(t, dev.WriteExperimentStartCode, s)
	assert.Contains(t, start, "import serial")
	assert.Contains(t, start, "class ApplianceDriver:")

	frame := emit(t, dev.WriteFrameCode, s)
	assert.Contains(t, frame, "pump.send(pump.startCommand)")
	assert.Contains(t, frame, "if pump.status == STARTED and t >= (pump.tStart + 0.5):")
	assert.Contains(t, frame, "pump.send(pump.stopCommand)")

	end := emit(t, dev.WriteExperimentEndCode, s)
	assert.Contains(t, end, "pump.send(pump.stopCommand)")
	assert.NotContains(t, end, "applianceLink.close()",
		"closing the shared link must wait for every appliance's send")
	assert.Contains(t, s.TeardownLines(), "applianceLink.close()")
}
