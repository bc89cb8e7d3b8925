// Package version_test provides tests for version management functionality.
package version

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetCodenameForVersion(t *testing.T) {
	tests := []struct {
		name             string
		version          string
		expectedCodename string
	}{
		{
			name:             "exact match for 0.3.0",
			version:          "0.3.0",
			expectedCodename: "Posner",
		},
		{
			name:             "patch version falls back to base",
			version:          "0.3.2",
			expectedCodename: "Posner",
		},
		{
			name:             "exact match for 0.2.0",
			version:          "0.2.0",
			expectedCodename: "Stroop",
		},
		{
			name:             "unknown version has no codename",
			version:          "9.9.9",
			expectedCodename: "",
		},
		{
			name:             "unparseable version has no codename",
			version:          "not-a-version",
			expectedCodename: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expectedCodename, GetCodenameForVersion(tt.version))
		})
	}
}

func TestGetInfo(t *testing.T) {
	info, err := GetInfo()
	require.NoError(t, err)
	assert.Equal(t, Version, info.Version)
	assert.NotNil(t, info.SemVer)
	assert.NotEmpty(t, info.Platform)
}

func TestGetFormattedVersion(t *testing.T) {
	formatted := GetFormattedVersion()
	assert.Contains(t, formatted, "psybuilder v")
	assert.Contains(t, formatted, Version)
}

func TestCheckFileCompatibility(t *testing.T) {
	tests := []struct {
		name        string
		fileVersion string
		wantErr     bool
		errContains string
	}{
		{
			name:        "same version is compatible",
			fileVersion: Version,
			wantErr:     false,
		},
		{
			name:        "older minor within major is compatible",
			fileVersion: "0.1.0",
			wantErr:     false,
		},
		{
			name:        "newer release is rejected",
			fileVersion: "0.99.0",
			wantErr:     true,
			errContains: "newer than",
		},
		{
			name:        "different major is rejected",
			fileVersion: "2.0.0",
			wantErr:     true,
			errContains: "requires psybuilder 2.x",
		},
		{
			name:        "garbage version is rejected",
			fileVersion: "banana",
			wantErr:     true,
			errContains: "invalid psybuilder_version",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := CheckFileCompatibility(tt.fileVersion)
			if tt.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errContains)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
