// Package variant enumerates the build variants the pipeline understands:
// target platforms, build modes, and CPU architectures.
//
// All values are immutable. Lookups by name are case-insensitive and return
// an error for unknown names, which callers surface as resolution faults.
package variant

import (
	"fmt"
	"strings"
)

// Mode is a build configuration.
type Mode struct {
	name string
}

// Name is the display name used for output directory segments and the
// native builder's -configuration flag.
func (m Mode) Name() string { return m.name }

func (m Mode) String() string { return m.name }

var (
	Debug   = Mode{name: "Debug"}
	Release = Mode{name: "Release"}
)

// Modes lists every supported mode.
func Modes() []Mode { return []Mode{Debug, Release} }

// ModeByName resolves a mode from its name.
func ModeByName(name string) (Mode, error) {
	for _, m := range Modes() {
		if strings.EqualFold(m.name, strings.TrimSpace(name)) {
			return m, nil
		}
	}
	return Mode{}, fmt.Errorf("unknown mode %q (want one of %s)", name, joinNames(Modes()))
}

// Target is a platform SDK the application is built for.
type Target struct {
	platform string
	archs    []Arch
}

// PlatformName is the SDK name, e.g. "iphoneos".
func (t Target) PlatformName() string { return t.platform }

func (t Target) String() string { return t.platform }

// Archs returns the architectures compiled for this target, in build order.
func (t Target) Archs() []Arch {
	out := make([]Arch, len(t.archs))
	copy(out, t.archs)
	return out
}

// Arch is a CPU architecture belonging to a family. The family selects the
// compiler's instruction set and the per-family numeric defaults.
type Arch struct {
	name   string
	family string
}

// Name is the architecture name used for output file names, e.g. "arm64".
func (a Arch) Name() string { return a.name }

// Family is the owning family name, e.g. "arm".
func (a Arch) Family() string { return a.family }

func (a Arch) String() string { return a.name }

var (
	ARMv7  = Arch{name: "armv7", family: "arm"}
	ARM64  = Arch{name: "arm64", family: "arm64"}
	I386   = Arch{name: "i386", family: "x86"}
	X86_64 = Arch{name: "x86_64", family: "x86_64"}
)

var (
	Device    = Target{platform: "iphoneos", archs: []Arch{ARMv7, ARM64}}
	Simulator = Target{platform: "iphonesimulator", archs: []Arch{I386, X86_64}}
)

// Targets lists every supported target.
func Targets() []Target { return []Target{Device, Simulator} }

// TargetByPlatform resolves a target from its platform name.
func TargetByPlatform(name string) (Target, error) {
	for _, t := range Targets() {
		if strings.EqualFold(t.platform, strings.TrimSpace(name)) {
			return t, nil
		}
	}
	return Target{}, fmt.Errorf("unknown platform %q (want one of %s)", name, joinNames(Targets()))
}

// defaultBases holds the image base address per architecture family.
// 64-bit iOS binaries reserve the low 4 GiB as __PAGEZERO.
var defaultBases = map[string]uint64{
	"arm":    0x1000,
	"arm64":  0x100000000,
	"x86":    0x1000,
	"x86_64": 0x100000000,
}

// BaseAddress returns the image base address for an architecture family.
func BaseAddress(family string) (uint64, error) {
	base, ok := defaultBases[family]
	if !ok {
		return 0, fmt.Errorf("no base address for architecture family %q", family)
	}
	return base, nil
}

func joinNames[T fmt.Stringer](vs []T) string {
	names := make([]string, len(vs))
	for i, v := range vs {
		names[i] = v.String()
	}
	return strings.Join(names, ", ")
}
