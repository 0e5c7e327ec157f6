// Package profile defines resolved build profiles and the sparse overrides a
// manifest may declare for them.
//
// Every build target is instantiated once per applicable [Profile]. The five
// built-in profiles ([Dev], [Release], [Test], [Doc], [Bench]) provide the
// baseline; a manifest's [profile.*] sections supply an [Override] per kind,
// and [Merge] folds the override onto the baseline without mutating it.
package profile

import "fmt"

// Env names the profile kind a target is built under.
type Env int

const (
	EnvDev Env = iota
	EnvRelease
	EnvTest
	EnvDoc
	EnvBench
)

var envNames = [...]string{"dev", "release", "test", "doc", "bench"}

// String returns the manifest spelling of the kind ("dev", "release", ...).
func (e Env) String() string {
	if int(e) < len(envNames) {
		return envNames[e]
	}
	return fmt.Sprintf("env(%d)", int(e))
}

// MarshalText implements encoding.TextMarshaler.
func (e Env) MarshalText() ([]byte, error) { return []byte(e.String()), nil }

// Profile is the concrete build configuration attached to one target
// instantiation. Profiles are comparable and two targets with equal name,
// role and Profile would produce the same artifact.
type Profile struct {
	Env          Env    `json:"env"`
	OptLevel     int    `json:"opt_level"`
	CodegenUnits int    `json:"codegen_units,omitempty"` // zero means the compiler default
	Debug        bool   `json:"debug"`
	Rpath        bool   `json:"rpath"`
	Test         bool   `json:"test"`    // compiled as a test harness and executed
	Doc          bool   `json:"doc"`     // documentation is generated
	Doctest      bool   `json:"doctest"` // documentation examples are executed
	Harness      bool   `json:"harness"` // the test harness provides main
	ForHost      bool   `json:"for_host"`
	CustomBuild  bool   `json:"custom_build"`
	Dest         string `json:"dest,omitempty"`
}

// Dev returns the baseline development profile.
func Dev() Profile {
	return Profile{Env: EnvDev, Debug: true, Harness: true}
}

// Release returns the baseline release profile.
func Release() Profile {
	return Profile{Env: EnvRelease, OptLevel: 3, Harness: true, Dest: "release"}
}

// Test returns the baseline test profile.
func Test() Profile {
	return Profile{Env: EnvTest, Debug: true, Test: true, Harness: true}
}

// Doc returns the baseline documentation profile.
func Doc() Profile {
	return Profile{Env: EnvDoc, Doc: true, Harness: true}
}

// Bench returns the baseline benchmark profile.
func Bench() Profile {
	return Profile{Env: EnvBench, OptLevel: 3, Test: true, Harness: true, Dest: "release"}
}

// IsTest reports whether building under p executes tests.
func (p Profile) IsTest() bool { return p.Test }

// WithTest returns a copy of p with the test flag set to v.
func (p Profile) WithTest(v bool) Profile { p.Test = v; return p }

// WithDoc returns a copy of p with the doc flag set to v.
func (p Profile) WithDoc(v bool) Profile { p.Doc = v; return p }

// WithDoctest returns a copy of p with the doctest flag set to v.
func (p Profile) WithDoctest(v bool) Profile { p.Doctest = v; return p }

// WithHarness returns a copy of p with the harness flag set to v.
func (p Profile) WithHarness(v bool) Profile { p.Harness = v; return p }

// ForHostOnly returns a copy of p that builds for the host platform.
func (p Profile) ForHostOnly() Profile { p.ForHost = true; return p }

// AsCustomBuild returns a copy of p marked as a build script profile.
func (p Profile) AsCustomBuild() Profile { p.CustomBuild = true; return p }

// String renders a compact, stable description such as "test[test,harness]".
func (p Profile) String() string {
	flags := ""
	add := func(on bool, name string) {
		if !on {
			return
		}
		if flags != "" {
			flags += ","
		}
		flags += name
	}
	add(p.Test, "test")
	add(p.Doc, "doc")
	add(p.Doctest, "doctest")
	add(p.Harness, "harness")
	add(p.ForHost, "host")
	add(p.CustomBuild, "build-script")
	add(p.Debug, "debug")
	add(p.Rpath, "rpath")
	return fmt.Sprintf("%s[opt=%d,%s]", p.Env, p.OptLevel, flags)
}
