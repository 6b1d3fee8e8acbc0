package tasks

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/corey/moebuild/internal/fsutil"
	"howett.net/plist"
)

// A provisioning profile is a CMS envelope around an XML property list.
// The plist is located by its delimiters instead of verifying the envelope.
var (
	plistStart = []byte("<?xml")
	plistEnd   = []byte("</plist>")
)

type profilePlist struct {
	UUID string `plist:"UUID"`
	Name string `plist:"Name"`
}

// ProfileUUID extracts the UUID from a provisioning profile file.
func ProfileUUID(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	start := bytes.Index(data, plistStart)
	if start < 0 {
		return "", errors.New("no property list in provisioning profile")
	}
	end := bytes.Index(data[start:], plistEnd)
	if end < 0 {
		return "", errors.New("truncated property list in provisioning profile")
	}
	body := data[start : start+end+len(plistEnd)]

	var p profilePlist
	if _, err := plist.Unmarshal(body, &p); err != nil {
		return "", fmt.Errorf("decode provisioning profile: %w", err)
	}
	if p.UUID == "" {
		return "", errors.New("provisioning profile has no UUID")
	}
	return p.UUID, nil
}

// InstallProfile copies src into dir under its own base name and returns
// the path of the profile inside dir. copied is false when src already is
// that file; the caller then owns nothing and must not remove it.
func InstallProfile(src, dir string) (dst string, copied bool, err error) {
	if err := fsutil.MkdirAll(dir); err != nil {
		return "", false, err
	}
	dst = filepath.Join(dir, filepath.Base(src))

	srcInfo, err := os.Stat(src)
	if err != nil {
		return "", false, err
	}
	if dstInfo, err := os.Stat(dst); err == nil && os.SameFile(srcInfo, dstInfo) {
		return dst, false, nil
	}

	in, err := os.Open(src)
	if err != nil {
		return "", false, err
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, fsutil.FileMode)
	if err != nil {
		return "", false, err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		os.Remove(dst)
		return "", false, err
	}
	if err := out.Close(); err != nil {
		os.Remove(dst)
		return "", false, err
	}
	return dst, true, nil
}
