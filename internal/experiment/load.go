package experiment

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"psybuilder/internal/components"
	"psybuilder/internal/logger"
	"psybuilder/internal/version"
	"psybuilder/pkg/exptypes"
)

// FileExt is the extension of psybuilder experiment files.
const FileExt = ".psyexp.yaml"

// configurable is satisfied by every component built on components.Base.
type configurable interface {
	SetConditions(start, stop exptypes.Condition) error
	ApplyParams(vals map[string]string) error
}

// Raw YAML schema of an experiment file.
type fileExperiment struct {
	Experiment string            `yaml:"experiment"`
	Version    string            `yaml:"psybuilder_version"`
	Settings   map[string]string `yaml:"settings"`
	Routines   []fileRoutine     `yaml:"routines"`
	Flow       []fileFlowEntry   `yaml:"flow"`
}

type fileRoutine struct {
	Name       string          `yaml:"name"`
	Components []fileComponent `yaml:"components"`
}

type fileComponent struct {
	Type    string              `yaml:"type"`
	Name    string              `yaml:"name"`
	Start   *exptypes.Condition `yaml:"start"`
	Stop    *exptypes.Condition `yaml:"stop"`
	Params  map[string]string   `yaml:"params"`
	Updates map[string]string   `yaml:"updates"`
}

type fileFlowEntry struct {
	Routine string    `yaml:"routine"`
	Loop    *fileLoop `yaml:"loop"`
}

type fileLoop struct {
	Name     string   `yaml:"name"`
	NReps    int      `yaml:"nReps"`
	Routines []string `yaml:"routines"`
}

// LoadOption adjusts how an experiment file is interpreted.
type LoadOption func(*loadConfig)

type loadConfig struct {
	triggerAddress string
	serialPort     string
}

// WithDeviceDefaults overrides the built-in default trigger address and
// serial port before the file's own settings are applied, so values
// from configuration reach components that leave theirs blank.
func WithDeviceDefaults(triggerAddress, serialPort string) LoadOption {
	return func(lc *loadConfig) {
		lc.triggerAddress = triggerAddress
		lc.serialPort = serialPort
	}
}

// LoadFile reads and builds an experiment from a .psyexp.yaml file.
func LoadFile(path string, opts ...LoadOption) (*Experiment, error) {
	if !strings.HasSuffix(path, FileExt) {
		return nil, fmt.Errorf("experiment file must have %s extension, got: %s", FileExt, filepath.Base(path))
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read experiment file: %w", err)
	}
	return Load(data, opts...)
}

// Load builds and validates an experiment model from YAML bytes.
func Load(data []byte, opts ...LoadOption) (*Experiment, error) {
	var lc loadConfig
	for _, opt := range opts {
		opt(&lc)
	}
	var raw fileExperiment
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse experiment file: %w", err)
	}

	if raw.Experiment == "" {
		return nil, fmt.Errorf("experiment file is missing the 'experiment' name")
	}

	if raw.Version == "" {
		logger.Warn("Experiment file carries no psybuilder_version, skipping compatibility check",
			"experiment", raw.Experiment)
	} else if err := version.CheckFileCompatibility(raw.Version); err != nil {
		return nil, fmt.Errorf("experiment %q: %w", raw.Experiment, err)
	}

	exp := New(raw.Experiment)
	exp.FileVersion = raw.Version

	if lc.triggerAddress != "" {
		if err := exp.Settings.Params().Set("trigger_address", lc.triggerAddress); err != nil {
			return nil, err
		}
	}
	if lc.serialPort != "" {
		if err := exp.Settings.Params().Set("serial_port", lc.serialPort); err != nil {
			return nil, err
		}
	}
	if err := exp.Settings.Apply(raw.Settings); err != nil {
		return nil, err
	}

	registry := components.GetGlobalRegistry()
	for _, fr := range raw.Routines {
		routine := &Routine{Name: fr.Name}
		for _, fc := range fr.Components {
			comp, err := registry.New(fc.Type, fc.Name)
			if err != nil {
				return nil, fmt.Errorf("routine %q: %w", fr.Name, err)
			}
			cfg, ok := comp.(configurable)
			if !ok {
				return nil, fmt.Errorf("component type %q does not accept configuration", fc.Type)
			}

			var start, stop exptypes.Condition
			if fc.Start != nil {
				start = *fc.Start
			}
			if fc.Stop != nil {
				stop = *fc.Stop
			}
			if err := cfg.SetConditions(start, stop); err != nil {
				return nil, fmt.Errorf("routine %q: %w", fr.Name, err)
			}
			if err := cfg.ApplyParams(fc.Params); err != nil {
				return nil, fmt.Errorf("routine %q: %w", fr.Name, err)
			}
			if err := applyUpdateScopes(comp.Params(), fc.Updates, fc.Name); err != nil {
				return nil, fmt.Errorf("routine %q: %w", fr.Name, err)
			}
			routine.Components = append(routine.Components, comp)
		}
		if err := exp.AddRoutine(routine); err != nil {
			return nil, err
		}
	}

	flow, err := buildFlow(exp, raw.Flow)
	if err != nil {
		return nil, err
	}
	exp.Flow = flow

	if err := exp.FillDeviceDefaults(); err != nil {
		return nil, err
	}
	if err := exp.Validate(); err != nil {
		return nil, err
	}
	return exp, nil
}

// applyUpdateScopes overrides the default update scope of named
// parameters, keeping the parameter order untouched.
func applyUpdateScopes(ps *exptypes.ParamSet, updates map[string]string, component string) error {
	names := make([]string, 0, len(updates))
	for name := range updates {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		p, ok := ps.Get(name)
		if !ok {
			return fmt.Errorf("component %q: update scope for unknown parameter %q", component, name)
		}
		scope := exptypes.UpdateScope(updates[name])
		switch scope {
		case exptypes.UpdateNever, exptypes.UpdateConstant, exptypes.UpdateEveryRepeat,
			exptypes.UpdateEveryFrame, exptypes.UpdateEveryExperiment:
		default:
			return fmt.Errorf("component %q: unknown update scope %q for parameter %q", component, updates[name], name)
		}
		p.Updates = scope
		ps.Define(name, p)
	}
	return nil
}

// buildFlow resolves routine references. An absent flow section means
// "run every routine once, in file order".
func buildFlow(exp *Experiment, raw []fileFlowEntry) ([]FlowEntry, error) {
	if len(raw) == 0 {
		flow := make([]FlowEntry, 0, len(exp.Routines))
		for _, r := range exp.Routines {
			flow = append(flow, FlowEntry{Routine: r})
		}
		return flow, nil
	}

	var flow []FlowEntry
	for i, fe := range raw {
		switch {
		case fe.Routine != "" && fe.Loop != nil:
			return nil, fmt.Errorf("flow entry %d: 'routine' and 'loop' are mutually exclusive", i)
		case fe.Routine != "":
			r, ok := exp.Routine(fe.Routine)
			if !ok {
				return nil, fmt.Errorf("flow references unknown routine %q", fe.Routine)
			}
			flow = append(flow, FlowEntry{Routine: r})
		case fe.Loop != nil:
			loop := &Loop{Name: fe.Loop.Name, NReps: fe.Loop.NReps}
			if loop.Name == "" {
				return nil, fmt.Errorf("flow entry %d: loop needs a name", i)
			}
			for _, name := range fe.Loop.Routines {
				r, ok := exp.Routine(name)
				if !ok {
					return nil, fmt.Errorf("loop %q references unknown routine %q", loop.Name, name)
				}
				loop.Routines = append(loop.Routines, r)
			}
			flow = append(flow, FlowEntry{Loop: loop})
		default:
			return nil, fmt.Errorf("flow entry %d is empty", i)
		}
	}
	return flow, nil
}
