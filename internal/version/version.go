// Package version provides centralized version management for
// psybuilder. It supports semantic versioning, build-time injection,
// and the compatibility gate for experiment files.
package version

import (
	"fmt"
	"runtime"
	"strings"

	"github.com/Masterminds/semver/v3"
)

// Build information that can be set at compile time via -ldflags
var (
	// Version is the semantic version of the application
	Version = "0.3.0"

	// GitCommit is the git commit hash when the binary was built
	GitCommit = "unknown"

	// BuildDate is the date when the binary was built
	BuildDate = "unknown"
)

// versionCodenames maps version strings to classic paradigm codenames,
// roughly ordered by how much machinery the paradigm needs
var versionCodenames = map[string]string{
	"0.1.0": "Donders",   // simple/choice reaction time
	"0.2.0": "Stroop",    // color-word interference
	"0.3.0": "Posner",    // spatial cueing
	"0.4.0": "Sternberg", // memory scanning
	"0.5.0": "Flanker",   // response conflict
	"0.6.0": "Simon",     // stimulus-response compatibility
	"0.7.0": "NBack",     // working memory load
	"1.0.0": "Oddball",   // the EEG workhorse
}

// Info represents comprehensive version information
type Info struct {
	Version   string          `json:"version"`
	Codename  string          `json:"codename"`
	GitCommit string          `json:"gitCommit"`
	BuildDate string          `json:"buildDate"`
	GoVersion string          `json:"goVersion"`
	Platform  string          `json:"platform"`
	SemVer    *semver.Version `json:"-"`
}

// GetVersion returns the current version string
func GetVersion() string {
	return Version
}

// GetCodename returns the codename for the current version
func GetCodename() string {
	return GetCodenameForVersion(Version)
}

// GetCodenameForVersion returns the codename for a specific version,
// falling back to the major.minor.0 base for patch versions
func GetCodenameForVersion(version string) string {
	if codename, exists := versionCodenames[version]; exists {
		return codename
	}

	sv, err := semver.NewVersion(version)
	if err != nil {
		return ""
	}

	baseVersion := fmt.Sprintf("%d.%d.0", sv.Major(), sv.Minor())
	if codename, exists := versionCodenames[baseVersion]; exists {
		return codename
	}

	return ""
}

// GetInfo returns comprehensive version information
func GetInfo() (*Info, error) {
	sv, err := semver.NewVersion(Version)
	if err != nil {
		return nil, fmt.Errorf("invalid semantic version '%s': %w", Version, err)
	}

	return &Info{
		Version:   Version,
		Codename:  GetCodename(),
		GitCommit: GitCommit,
		BuildDate: BuildDate,
		GoVersion: runtime.Version(),
		Platform:  fmt.Sprintf("%s/%s", runtime.GOOS, runtime.GOARCH),
		SemVer:    sv,
	}, nil
}

// GetFormattedVersion returns a nicely formatted version string
func GetFormattedVersion() string {
	info, err := GetInfo()
	if err != nil {
		return fmt.Sprintf("psybuilder v%s (invalid version)", Version)
	}

	var parts []string
	if info.Codename != "" {
		parts = append(parts, fmt.Sprintf("psybuilder v%s '%s'", info.Version, info.Codename))
	} else {
		parts = append(parts, fmt.Sprintf("psybuilder v%s", info.Version))
	}

	if info.GitCommit != "unknown" && info.GitCommit != "" {
		shortCommit := info.GitCommit
		if len(shortCommit) > 7 {
			shortCommit = shortCommit[:7]
		}
		parts = append(parts, fmt.Sprintf("commit %s", shortCommit))
	}

	if info.BuildDate != "unknown" && info.BuildDate != "" {
		parts = append(parts, fmt.Sprintf("built %s", info.BuildDate))
	}

	return strings.Join(parts, ", ")
}

// GetDetailedVersion returns detailed version information for debugging
func GetDetailedVersion() string {
	info, err := GetInfo()
	if err != nil {
		return fmt.Sprintf("psybuilder v%s (error: %v)", Version, err)
	}

	var lines []string
	if info.Codename != "" {
		lines = append(lines, fmt.Sprintf("psybuilder v%s '%s'", info.Version, info.Codename))
	} else {
		lines = append(lines, fmt.Sprintf("psybuilder v%s", info.Version))
	}
	lines = append(lines, fmt.Sprintf("Git Commit: %s", info.GitCommit))
	lines = append(lines, fmt.Sprintf("Build Date: %s", info.BuildDate))
	lines = append(lines, fmt.Sprintf("Go Version: %s", info.GoVersion))
	lines = append(lines, fmt.Sprintf("Platform: %s", info.Platform))

	return strings.Join(lines, "\n")
}

// CheckFileCompatibility decides whether an experiment file written by
// the given psybuilder version can be compiled by this build. Files
// from a different major version or from a newer release are rejected;
// older files within the same major are accepted.
func CheckFileCompatibility(fileVersion string) error {
	fv, err := semver.NewVersion(fileVersion)
	if err != nil {
		return fmt.Errorf("invalid psybuilder_version %q: %w", fileVersion, err)
	}
	tv, err := semver.NewVersion(Version)
	if err != nil {
		return fmt.Errorf("invalid tool version %q: %w", Version, err)
	}

	if fv.Major() != tv.Major() {
		return fmt.Errorf("experiment file requires psybuilder %d.x, this is v%s", fv.Major(), Version)
	}
	if fv.GreaterThan(tv) {
		return fmt.Errorf("experiment file was written by psybuilder v%s, newer than this v%s; upgrade psybuilder", fileVersion, Version)
	}
	return nil
}
