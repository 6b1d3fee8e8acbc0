package sanitizer

import (
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/corey/moebuild/internal/fsutil"
)

// DescriptorExt is the extension of an Xcode project descriptor.
const DescriptorExt = ".pbxproj"

// DescriptorPath is the conventional descriptor location inside a project
// bundle: <projectDir>/<name>.xcodeproj/project.pbxproj.
func DescriptorPath(projectDir, name string) string {
	return filepath.Join(projectDir, name+".xcodeproj", "project"+DescriptorExt)
}

// LocateDescriptor returns the conventional descriptor path when it exists,
// otherwise the first *.pbxproj found breadth-first under searchRoot.
// The boolean reports whether the fallback search was used.
func LocateDescriptor(projectDir, name, searchRoot string) (string, bool, error) {
	conventional := DescriptorPath(projectDir, name)
	if info, err := os.Stat(conventional); err == nil && !info.IsDir() {
		return conventional, false, nil
	}

	found, err := fsutil.FindBreadthFirst(searchRoot, func(path string, d fs.DirEntry) bool {
		return !d.IsDir() && strings.HasSuffix(d.Name(), DescriptorExt)
	})
	if err != nil {
		return "", true, err
	}
	if len(found) == 0 {
		return "", true, fs.ErrNotExist
	}
	return found[0], true, nil
}
