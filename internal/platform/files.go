package platform

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// File permissions
const (
	DefaultDirPermissions  = 0755
	DefaultFilePermissions = 0644
)

// Name sanitizing
const (
	ForbiddenNameChars = `/\?%*:|"<>`
	NameReplacement    = "-"
	OrdinalSeparator   = "_"
)

// Temporary files live next to their destination with this suffix before the extension
const (
	TempSuffix = "_tmp"
)

// JSON output
const (
	JSONIndent = "  "
)

var nameReplacer = newNameReplacer()

func newNameReplacer() *strings.Replacer {
	pairs := make([]string, 0, len(ForbiddenNameChars)*2)
	for _, r := range ForbiddenNameChars {
		pairs = append(pairs, string(r), NameReplacement)
	}
	return strings.NewReplacer(pairs...)
}

// SanitizeName maps a display string to a filesystem-safe path segment by
// replacing each forbidden character with a hyphen. Length and reserved
// device names are left alone.
func SanitizeName(name string) string {
	return nameReplacer.Replace(name)
}

// OrdinalName prefixes name with its zero-based position among its siblings and sanitizes the result
func OrdinalName(ordinal int, name string) string {
	return SanitizeName(fmt.Sprintf("%d%s%s", ordinal, OrdinalSeparator, name))
}

// CreateDirectoryIfNotExists creates directory if it doesn't exist
func CreateDirectoryIfNotExists(dirPath string) error {
	if _, err := os.Stat(dirPath); os.IsNotExist(err) {
		return os.MkdirAll(dirPath, DefaultDirPermissions)
	}
	return nil
}

// FileExists reports whether anything is present at path
func FileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// FileSize returns the size of the file at path, or 0 if it cannot be read
func FileSize(path string) int64 {
	info, err := os.Stat(path)
	if err != nil {
		return 0
	}
	return info.Size()
}

// CreateTempPath reserves a unique temporary path next to dest, keeping its
// extension so that tools which infer the container from the name still work.
// The name never equals another asset's destination at the time of the call;
// the reservation is released so the caller's tool creates the file itself.
//
//	downloads/0_M/0_L/v.mp4 -> downloads/0_M/0_L/v_1234567890_tmp.mp4
func CreateTempPath(dest string) (string, error) {
	dir, base := filepath.Split(dest)
	if dir == "" {
		dir = "."
	}
	ext := filepath.Ext(base)
	stem := strings.TrimSuffix(base, ext)

	f, err := os.CreateTemp(dir, stem+"_*"+TempSuffix+ext)
	if err != nil {
		return "", fmt.Errorf("reserve temporary file for %s: %w", base, err)
	}
	name := f.Name()
	if err := f.Close(); err != nil {
		return "", err
	}
	if err := os.Remove(name); err != nil {
		return "", err
	}
	return name, nil
}

// IsTempPathFor reports whether path is a temporary name reserved for dest
func IsTempPathFor(dest, path string) bool {
	if filepath.Dir(dest) != filepath.Dir(path) {
		return false
	}
	base := filepath.Base(dest)
	ext := filepath.Ext(base)
	stem := strings.TrimSuffix(base, ext)
	name := filepath.Base(path)
	return strings.HasPrefix(name, stem+"_") && strings.HasSuffix(name, TempSuffix+ext) &&
		len(name) > len(stem)+1+len(TempSuffix)+len(ext)
}

// CommitFile atomically moves a completed temporary file onto its destination
func CommitFile(tempPath, dest string) error {
	if err := os.Rename(tempPath, dest); err != nil {
		return fmt.Errorf("move %s into place: %w", filepath.Base(dest), err)
	}
	return nil
}

// RemoveIfExists deletes path, ignoring a missing file
func RemoveIfExists(path string) error {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// WriteJSONFile pretty-prints v with a two-space indent and overwrites path.
// HTML characters are written as is.
func WriteJSONFile(path string, v any) error {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", JSONIndent)
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encode %s: %w", filepath.Base(path), err)
	}
	data := bytes.TrimSuffix(buf.Bytes(), []byte("\n"))
	return WriteFile(path, data)
}

// WriteFile overwrites path with data
func WriteFile(path string, data []byte) error {
	if err := os.WriteFile(path, data, DefaultFilePermissions); err != nil {
		return fmt.Errorf("write %s: %w", filepath.Base(path), err)
	}
	return nil
}
