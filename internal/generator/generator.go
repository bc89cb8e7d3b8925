// Package generator assembles the output Python script from an
// experiment model. Generation is a single synchronous pass in a fixed
// section order: header, experiment-start imports, window and device
// setup, per-component initialisations, the flow of routine frame
// loops, and teardown. The pass owns its writer and session state, so
// generating the same model twice yields byte-identical scripts.
package generator

import (
	"fmt"

	"psybuilder/internal/codegen"
	"psybuilder/internal/experiment"
	"psybuilder/internal/logger"
	"psybuilder/internal/version"
	"psybuilder/pkg/exptypes"
)

// Options control a generation pass.
type Options struct {
	// TestMode pins the version string in the script header so golden
	// files survive releases.
	TestMode bool
}

// Generate compiles an experiment model into Python source text.
func Generate(exp *experiment.Experiment, opts Options) (string, error) {
	if err := exp.Validate(); err != nil {
		return "", err
	}

	w := codegen.NewWriter()
	s := codegen.NewSession(opts.TestMode)

	sections := []struct {
		name string
		emit func(*codegen.Writer, *codegen.Session) error
	}{
		{"header", func(w *codegen.Writer, s *codegen.Session) error { return writeHeader(w, s, exp) }},
		{"experiment start", func(w *codegen.Writer, s *codegen.Session) error { return writeExperimentStart(w, s, exp) }},
		{"setup", func(w *codegen.Writer, s *codegen.Session) error { return writeSetup(w, s, exp) }},
		{"init", func(w *codegen.Writer, s *codegen.Session) error { return writeInit(w, s, exp) }},
		{"flow", func(w *codegen.Writer, s *codegen.Session) error { return writeFlow(w, s, exp) }},
		{"experiment end", func(w *codegen.Writer, s *codegen.Session) error { return writeExperimentEnd(w, s, exp) }},
	}

	for _, section := range sections {
		logger.GenerationStep(section.name, "experiment", exp.Name)
		levelBefore := w.Level()
		if err := section.emit(w, s); err != nil {
			return "", fmt.Errorf("generating %s section: %w", section.name, err)
		}
		if w.Level() != levelBefore {
			return "", fmt.Errorf("generating %s section: unbalanced indentation (level %d, expected %d)",
				section.name, w.Level(), levelBefore)
		}
	}

	pushes, pops := w.Balance()
	if pushes != pops {
		return "", fmt.Errorf("generation finished with unbalanced indentation: %d pushes, %d pops", pushes, pops)
	}
	return w.String(), nil
}

func writeHeader(w *codegen.Writer, s *codegen.Session, exp *experiment.Experiment) error {
	toolVersion := fmt.Sprintf("v%s", version.GetVersion())
	if s.TestMode {
		toolVersion = "vTEST"
	}
	w.WriteLines("#!/usr/bin/env python")
	w.WriteLines("# -*- coding: utf-8 -*-")
	w.WriteLines("#")
	w.WriteLinesf("# Experiment: %s", exp.Name)
	w.WriteLinesf("# Experiment id: %s", exp.ID())
	w.WriteLinesf("# Generated by psybuilder %s", toolVersion)
	w.BlankLine()
	return nil
}

func writeExperimentStart(w *codegen.Writer, s *codegen.Session, exp *experiment.Experiment) error {
	if err := exp.Settings.WriteExperimentStartCode(w, s); err != nil {
		return err
	}
	for _, c := range exp.Components() {
		logger.ComponentEmit(c.Name(), "experiment start")
		if err := c.WriteExperimentStartCode(w, s); err != nil {
			return err
		}
	}
	w.BlankLine()
	return nil
}

func writeSetup(w *codegen.Writer, s *codegen.Session, exp *experiment.Experiment) error {
	w.WriteLines("# --- Window and timing setup ---")
	withMouse := exp.UsesCondition(exptypes.CondMouseClick)
	if err := exp.Settings.WriteSetupCode(w, withMouse); err != nil {
		return err
	}
	w.BlankLine()
	return nil
}

func writeInit(w *codegen.Writer, s *codegen.Session, exp *experiment.Experiment) error {
	for _, r := range exp.Routines {
		w.WriteLinesf("# --- Initialize components for routine %q ---", r.Name)
		for _, c := range r.Components {
			logger.ComponentEmit(c.Name(), "init")
			if err := c.WriteInitCode(w, s); err != nil {
				return err
			}
		}
		w.BlankLine()
	}
	return nil
}

func writeFlow(w *codegen.Writer, s *codegen.Session, exp *experiment.Experiment) error {
	for _, entry := range exp.Flow {
		if entry.Loop != nil {
			if err := writeLoop(w, s, entry.Loop); err != nil {
				return err
			}
			continue
		}
		if err := writeRoutine(w, s, entry.Routine); err != nil {
			return err
		}
	}
	return nil
}

func writeLoop(w *codegen.Writer, s *codegen.Session, loop *experiment.Loop) error {
	w.WriteLinesf("# --- Loop %q (%d repeats) ---", loop.Name, loop.NReps)
	w.WriteLinesf("for %s_thisRep in range(%d):", loop.Name, loop.NReps)
	w.Indent()
	for _, r := range loop.Routines {
		if err := writeRoutine(w, s, r); err != nil {
			return err
		}
	}
	if err := w.Dedent(); err != nil {
		return err
	}
	return nil
}

func writeRoutine(w *codegen.Writer, s *codegen.Session, r *experiment.Routine) error {
	w.WriteLinesf("# --- Routine %q ---", r.Name)
	for _, c := range r.Components {
		logger.ComponentEmit(c.Name(), "routine start")
		if err := c.WriteRoutineStartCode(w, s); err != nil {
			return err
		}
	}
	componentList := ""
	for i, c := range r.Components {
		if i > 0 {
			componentList += ", "
		}
		componentList += c.Name()
	}
	w.WriteLinesf("%sComponents = [%s]", r.Name, componentList)
	w.WriteLines("continueRoutine = True")
	w.WriteLines("routineTimer.reset()")
	w.WriteLines("t = 0")
	w.WriteLines("frameN = -1")
	w.WriteLines("while continueRoutine:")
	w.Indent()
	w.WriteLines("t = routineTimer.getTime()")
	w.WriteLines("frameN = frameN + 1")
	for _, c := range r.Components {
		logger.ComponentEmit(c.Name(), "frame")
		if err := c.WriteFrameCode(w, s); err != nil {
			return err
		}
	}
	w.WriteLines("# check whether every component has finished")
	w.WriteLines("continueRoutine = False")
	w.WriteLinesf("for thisComponent in %sComponents:", r.Name)
	w.Indent()
	w.WriteLinesf("if thisComponent.status != %s:", exptypes.StatusFinished)
	w.Indent()
	w.WriteLines("continueRoutine = True")
	w.WriteLines("break")
	if err := w.Dedent(); err != nil {
		return err
	}
	if err := w.Dedent(); err != nil {
		return err
	}
	w.WriteLines("if event.getKeys(keyList=['escape']):")
	w.Indent()
	w.WriteLines("core.quit()")
	if err := w.Dedent(); err != nil {
		return err
	}
	w.WriteLines("win.flip()")
	if err := w.Dedent(); err != nil {
		return err
	}
	w.BlankLine()
	return nil
}

func writeExperimentEnd(w *codegen.Writer, s *codegen.Session, exp *experiment.Experiment) error {
	w.WriteLines("# --- End of experiment ---")
	for _, c := range exp.Components() {
		logger.ComponentEmit(c.Name(), "experiment end")
		if err := c.WriteExperimentEndCode(w, s); err != nil {
			return err
		}
	}
	// Shared-resource shutdown runs after every component's end hook
	for _, line := range s.TeardownLines() {
		w.WriteLines(line)
	}
	w.WriteLines("win.close()")
	w.WriteLines("core.quit()")
	return nil
}
