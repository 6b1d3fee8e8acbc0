// Package sdk resolves the files the pipeline needs from an installed MOE SDK.
//
// Layout under the SDK root:
//
//	tools/dex2oat               ahead-of-time compiler
//	tools/preloaded-classes     image class list
//	sdk/moe-core.dex            main dex archives, appended after the
//	sdk/moe-ios-retro.jar       caller's archives in this order
package sdk

import (
	"errors"
	"os"
	"path/filepath"

	"github.com/corey/moebuild/internal/fsutil"
)

// EnvHome names the environment variable consulted when no root is given.
const EnvHome = "MOE_SDK_HOME"

var defaultMainDex = []string{"moe-core.dex", "moe-ios-retro.jar"}

// ErrNotConfigured is returned when no SDK root is known.
var ErrNotConfigured = errors.New("MOE SDK location not configured (use --sdk or " + EnvHome + ")")

// SDK holds resolved tool and archive paths. Existence of the individual
// files is checked by the tasks that consume them.
type SDK struct {
	Root             string
	Dex2Oat          string
	PreloadedClasses string
	MainDexFiles     []string
}

// Locate resolves an SDK rooted at root, falling back to $MOE_SDK_HOME.
// mainDex, when non-empty, replaces the default main dex archive names;
// relative names resolve against <root>/sdk.
func Locate(root string, mainDex []string) (*SDK, error) {
	if root == "" {
		root = os.Getenv(EnvHome)
	}
	if root == "" {
		return nil, ErrNotConfigured
	}
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, err
	}
	if err := fsutil.CheckDir(abs); err != nil {
		return nil, err
	}

	if len(mainDex) == 0 {
		mainDex = defaultMainDex
	}
	files := make([]string, len(mainDex))
	for i, name := range mainDex {
		if filepath.IsAbs(name) {
			files[i] = name
			continue
		}
		files[i] = filepath.Join(abs, "sdk", name)
	}

	return &SDK{
		Root:             abs,
		Dex2Oat:          filepath.Join(abs, "tools", "dex2oat"),
		PreloadedClasses: filepath.Join(abs, "tools", "preloaded-classes"),
		MainDexFiles:     files,
	}, nil
}
