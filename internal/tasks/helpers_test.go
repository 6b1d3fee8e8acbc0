package tasks

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/corey/moebuild/internal/ports"
	"github.com/corey/moebuild/internal/sdk"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

// fakeRunner records invocations and replays scripted output.
type fakeRunner struct {
	mu    sync.Mutex
	calls []ports.Command
	lines []string
	code  int
	err   error

	// hook, when set, runs instead of the scripted result.
	hook func(ctx context.Context, cmd ports.Command) (int, error)
}

func (f *fakeRunner) Run(ctx context.Context, cmd ports.Command, onLine func(string)) (int, error) {
	f.mu.Lock()
	f.calls = append(f.calls, cmd)
	f.mu.Unlock()

	if onLine != nil {
		for _, l := range f.lines {
			onLine(l)
		}
	}
	if f.hook != nil {
		return f.hook(ctx, cmd)
	}
	return f.code, f.err
}

func (f *fakeRunner) Calls() []ports.Command {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]ports.Command(nil), f.calls...)
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
}

// newModule creates a module with a build directory and a native project
// named App under xcode/.
func newModule(t *testing.T) *Layout {
	t.Helper()
	root := t.TempDir()
	l := NewLayout(root)
	require.NoError(t, os.MkdirAll(l.Build, 0755))
	writeFile(t, filepath.Join(root, "xcode", "App.xcodeproj", "project.pbxproj"), descriptorFixture)
	return l
}

// newSDK creates an SDK tree with the compiler, class list and main archives.
func newSDK(t *testing.T) *sdk.SDK {
	t.Helper()
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "tools", "dex2oat"), "#!/bin/sh\n")
	writeFile(t, filepath.Join(root, "tools", "preloaded-classes"), "java.lang.Object\n")
	writeFile(t, filepath.Join(root, "sdk", "moe-core.dex"), "dex")
	writeFile(t, filepath.Join(root, "sdk", "moe-ios-retro.jar"), "jar")
	s, err := sdk.Locate(root, nil)
	require.NoError(t, err)
	return s
}

const descriptorFixture = `// !$*UTF8*$!
{
/* Begin PBXBuildFile section */
		A1 /* main.m in Sources */ = {isa = PBXBuildFile; };
/* End PBXBuildFile section */
/* Begin PBXShellScriptBuildPhase section */
		B1 /* Run Script */ = {
			isa = PBXShellScriptBuildPhase;
			shellScript = "exec ./gradlew moeLaunch";
		};
/* End PBXShellScriptBuildPhase section */
}
`

// profileFixture mimics a signed provisioning profile: binary envelope
// bytes around an XML property list.
const profileFixture = "0\x82\x1a\x06\t*\x86H\x86\xf7\r\x01\x07\x02" +
	`<?xml version="1.0" encoding="UTF-8"?>
<!DOCTYPE plist PUBLIC "-//Apple//DTD PLIST 1.0//EN" "http://www.apple.com/DTDs/PropertyList-1.0.dtd">
<plist version="1.0">
<dict>
	<key>Name</key>
	<string>Dev Profile</string>
	<key>UUID</key>
	<string>4F2C0C2E-1D2B-4A3C-9E8F-0123456789AB</string>
</dict>
</plist>` + "\x00\x01\x02trailing-signature"

func discard() zerolog.Logger { return zerolog.Nop() }
