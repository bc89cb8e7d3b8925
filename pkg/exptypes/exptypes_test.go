package exptypes

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParam_Literal(t *testing.T) {
	tests := []struct {
		name     string
		param    Param
		expected string
	}{
		{
			name:     "string value is quoted",
			param:    Param{Val: "Hello", Type: ValTypeStr},
			expected: `"Hello"`,
		},
		{
			name:     "string value with quotes is escaped",
			param:    Param{Val: `say "hi"`, Type: ValTypeStr},
			expected: `"say \"hi\""`,
		},
		{
			name:     "numeric value emitted verbatim",
			param:    Param{Val: "0.5", Type: ValTypeNum},
			expected: "0.5",
		},
		{
			name:     "code value emitted verbatim",
			param:    Param{Val: "thisTrial.ori + 90", Type: ValTypeCode},
			expected: "thisTrial.ori + 90",
		},
		{
			name:     "list value emitted verbatim",
			param:    Param{Val: "(0, 0)", Type: ValTypeList},
			expected: "(0, 0)",
		},
		{
			name:     "bool true becomes Python True",
			param:    Param{Val: "true", Type: ValTypeBool},
			expected: "True",
		},
		{
			name:     "bool false becomes Python False",
			param:    Param{Val: "no", Type: ValTypeBool},
			expected: "False",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.param.Literal())
		})
	}
}

func TestParam_Allowed(t *testing.T) {
	p := Param{Val: "norm", Type: ValTypeStr, AllowedVals: []string{"norm", "pix", "height"}}
	assert.True(t, p.Allowed("pix"))
	assert.False(t, p.Allowed("inches"))

	unrestricted := Param{Val: "anything", Type: ValTypeStr}
	assert.True(t, unrestricted.Allowed("whatever"))
}

func TestParamSet_OrderPreserved(t *testing.T) {
	ps := NewParamSet()
	ps.Define("text", Param{Val: "Hello", Type: ValTypeStr})
	ps.Define("color", Param{Val: "white", Type: ValTypeStr})
	ps.Define("height", Param{Val: "0.1", Type: ValTypeNum})

	assert.Equal(t, []string{"text", "color", "height"}, ps.Names())

	// Redefining keeps the original position
	ps.Define("text", Param{Val: "Bye", Type: ValTypeStr})
	assert.Equal(t, []string{"text", "color", "height"}, ps.Names())

	p, ok := ps.Get("text")
	require.True(t, ok)
	assert.Equal(t, "Bye", p.Val)
}

func TestParamSet_Set(t *testing.T) {
	ps := NewParamSet()
	ps.Define("units", Param{Val: "height", Type: ValTypeStr, AllowedVals: []string{"height", "norm", "pix"}})

	require.NoError(t, ps.Set("units", "pix"))
	p, _ := ps.Get("units")
	assert.Equal(t, "pix", p.Val)

	err := ps.Set("units", "leagues")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "does not allow")

	err = ps.Set("missing", "x")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown parameter")
}

func TestConditionKind_Validity(t *testing.T) {
	for _, kind := range StartKinds() {
		assert.True(t, ValidStart(kind), "start kind %q should be valid", kind)
		assert.True(t, ValidStop(kind), "start kind %q should also be a valid stop", kind)
	}

	// Duration kinds are stop-only
	assert.False(t, ValidStart(CondDurationTime))
	assert.False(t, ValidStart(CondDurationFrames))
	assert.True(t, ValidStop(CondDurationTime))
	assert.True(t, ValidStop(CondDurationFrames))

	assert.False(t, ValidStart(ConditionKind("banana")))
	assert.False(t, ValidStop(ConditionKind("banana")))
}

func TestCondition_Zero(t *testing.T) {
	assert.True(t, Condition{}.Zero())
	assert.False(t, Condition{Kind: CondTime, Val: "0.0"}.Zero())
}
