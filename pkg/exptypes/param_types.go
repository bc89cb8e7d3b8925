// Package exptypes defines the experiment data model for psybuilder.
// This file contains the parameter types shared by every component: typed
// values, allowed-value sets, and update scopes that control at which
// lifecycle point a parameter is re-evaluated in the generated script.
package exptypes

import "fmt"

// ValType describes how a parameter value is interpreted when emitted
// into the generated script.
type ValType string

const (
	// ValTypeCode is a raw Python expression emitted verbatim.
	ValTypeCode ValType = "code"
	// ValTypeStr is a string literal, quoted on emission.
	ValTypeStr ValType = "str"
	// ValTypeNum is a numeric literal.
	ValTypeNum ValType = "num"
	// ValTypeBool is a Python boolean literal (True/False).
	ValTypeBool ValType = "bool"
	// ValTypeList is a Python list or tuple expression emitted verbatim.
	ValTypeList ValType = "list"
)

// UpdateScope describes when a parameter takes effect in the generated
// script's run loop.
type UpdateScope string

const (
	// UpdateNever marks a parameter that is never re-applied after init.
	UpdateNever UpdateScope = "never"
	// UpdateConstant marks a parameter baked into the init call.
	UpdateConstant UpdateScope = "constant"
	// UpdateEveryRepeat re-applies the parameter at each routine start.
	UpdateEveryRepeat UpdateScope = "set every repeat"
	// UpdateEveryFrame re-applies the parameter on every display frame
	// while the owning component is active.
	UpdateEveryFrame UpdateScope = "set every frame"
	// UpdateEveryExperiment applies the parameter once per experiment run.
	UpdateEveryExperiment UpdateScope = "set every experiment"
)

// Param is a single named value attached to a component. The value type
// and allowed-value set constrain what the generator may emit as literal
// code text.
type Param struct {
	Val         string      `yaml:"val"`
	Type        ValType     `yaml:"type"`
	Updates     UpdateScope `yaml:"updates"`
	AllowedVals []string    `yaml:"allowed,omitempty"`
	Hint        string      `yaml:"hint,omitempty"`
	Label       string      `yaml:"label,omitempty"`
}

// Allowed reports whether v satisfies the parameter's allowed-value set.
// An empty set allows any value.
func (p Param) Allowed(v string) bool {
	if len(p.AllowedVals) == 0 {
		return true
	}
	for _, a := range p.AllowedVals {
		if a == v {
			return true
		}
	}
	return false
}

// Literal renders the parameter's current value as Python source text
// according to its value type.
func (p Param) Literal() string {
	switch p.Type {
	case ValTypeStr:
		return fmt.Sprintf("%q", p.Val)
	case ValTypeBool:
		if p.Val == "true" || p.Val == "True" || p.Val == "1" {
			return "True"
		}
		return "False"
	default:
		// code, num and list values are emitted verbatim
		return p.Val
	}
}

// ParamSet is an insertion-ordered mapping of parameter name to Param.
// Emission walks parameters in registration order so that regenerating
// an unchanged experiment yields byte-identical output.
type ParamSet struct {
	order  []string
	params map[string]Param
}

// NewParamSet creates an empty parameter set.
func NewParamSet() *ParamSet {
	return &ParamSet{params: make(map[string]Param)}
}

// Define registers a parameter under name, replacing any previous
// definition but keeping the original position in the emission order.
func (ps *ParamSet) Define(name string, p Param) {
	if _, exists := ps.params[name]; !exists {
		ps.order = append(ps.order, name)
	}
	ps.params[name] = p
}

// Get returns the parameter registered under name.
func (ps *ParamSet) Get(name string) (Param, bool) {
	p, ok := ps.params[name]
	return p, ok
}

// Set replaces the current value of an already-defined parameter.
// It fails on unknown names and on values outside the allowed set.
func (ps *ParamSet) Set(name, val string) error {
	p, ok := ps.params[name]
	if !ok {
		return fmt.Errorf("unknown parameter %q", name)
	}
	if !p.Allowed(val) {
		return fmt.Errorf("parameter %q does not allow value %q (allowed: %v)", name, val, p.AllowedVals)
	}
	p.Val = val
	ps.params[name] = p
	return nil
}

// Names returns the parameter names in registration order.
func (ps *ParamSet) Names() []string {
	names := make([]string, len(ps.order))
	copy(names, ps.order)
	return names
}

// Len returns the number of defined parameters.
func (ps *ParamSet) Len() int {
	return len(ps.order)
}
