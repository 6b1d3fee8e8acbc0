package tasks

import (
	"path/filepath"
	"time"
)

// StampFormat names log files; one stamp is shared by every log of a run.
const StampFormat = "2006.01.02_15.04.05"

// Stamp formats a run timestamp for log file names.
func Stamp(t time.Time) string {
	return t.Format(StampFormat)
}

// Layout holds the resolved filesystem locations inside a module.
// All fields are pre-computed from the module root.
type Layout struct {
	Module string // <module>
	Build  string // build/
	MOE    string // build/moe/
	Logs   string // build/logs/

	XcodeBuild string // build/moe/xcodebuild/
	Dst        string // build/moe/xcodebuild/dst
	Obj        string // build/moe/xcodebuild/obj
	Sym        string // build/moe/xcodebuild/sym

	// Native project directory candidates, checked in order.
	ProjectDirs []string // xcode/, build/xcode/
}

// NewLayout constructs the layout for a module root.
func NewLayout(module string) *Layout {
	build := filepath.Join(module, "build")
	moe := filepath.Join(build, "moe")
	xb := filepath.Join(moe, "xcodebuild")
	return &Layout{
		Module: module,
		Build:  build,
		MOE:    moe,
		Logs:   filepath.Join(build, "logs"),

		XcodeBuild: xb,
		Dst:        filepath.Join(xb, "dst"),
		Obj:        filepath.Join(xb, "obj"),
		Sym:        filepath.Join(xb, "sym"),

		ProjectDirs: []string{
			filepath.Join(module, "xcode"),
			filepath.Join(build, "xcode"),
		},
	}
}

// DexDir holds the caller's dex archives: build/moe/<sourceSet>/<mode>/.
func (l *Layout) DexDir(sourceSet, mode string) string {
	return filepath.Join(l.MOE, sourceSet, mode)
}

// AOTDir holds compiled images: build/<sourceSet>/xcode/<mode>-<platform>/.
func (l *Layout) AOTDir(sourceSet, mode, platform string) string {
	return filepath.Join(l.Build, sourceSet, "xcode", mode+"-"+platform)
}

// UIDefinition is the storyboard validated before the native build:
// src/<sourceSet>/resources/MainUI.storyboard.
func (l *Layout) UIDefinition(sourceSet string) string {
	return filepath.Join(l.Module, "src", sourceSet, "resources", "MainUI.storyboard")
}

// BuildLog is build/logs/<prefix>-<stamp>.log.
func (l *Layout) BuildLog(prefix string, at time.Time) string {
	return filepath.Join(l.Logs, prefix+"-"+Stamp(at)+".log")
}
