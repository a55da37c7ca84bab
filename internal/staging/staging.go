// Package staging manages the request-scoped files of the API: uploaded
// inputs and produced outputs.
package staging

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/celestiaorg/faceswap/internal/logger"
)

// Role is the part a staged file plays in a request
type Role string

const (
	// RoleSource is the face donor upload
	RoleSource Role = "source"
	// RoleTarget is the upload the face is applied to
	RoleTarget Role = "target"
	// RoleOutput is the produced file
	RoleOutput Role = "output"
)

// Default subfolder names under the temp root
const (
	DefaultUploadDirName = "faceswap_uploads"
	DefaultOutputDirName = "faceswap_outputs"

	outputPrefix = "output_"
	maxExtLen    = 16
)

// StagedFile is a file owned by the staging manager
type StagedFile struct {
	OriginalName string
	Path         string
	Role         Role
}

// Name returns the generated file name
func (f *StagedFile) Name() string {
	return filepath.Base(f.Path)
}

// Manager allocates unique paths in the upload and output areas
type Manager struct {
	uploadDir string
	outputDir string
}

// NewManager creates both areas if they do not exist yet
func NewManager(uploadDir, outputDir string) (*Manager, error) {
	if uploadDir == "" || outputDir == "" {
		return nil, errors.New("upload and output directories are required")
	}
	for _, dir := range []string{uploadDir, outputDir} {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return nil, fmt.Errorf("failed to create staging directory %s: %w", dir, err)
		}
	}
	return &Manager{uploadDir: uploadDir, outputDir: outputDir}, nil
}

// DefaultDirs returns the upload and output areas under the system temp root
func DefaultDirs() (string, string) {
	root := os.TempDir()
	return filepath.Join(root, DefaultUploadDirName), filepath.Join(root, DefaultOutputDirName)
}

// UploadDir returns the upload area
func (m *Manager) UploadDir() string { return m.uploadDir }

// OutputDir returns the output area
func (m *Manager) OutputDir() string { return m.outputDir }

// UploadDirExists reports whether the upload area is present
func (m *Manager) UploadDirExists() bool { return isDir(m.uploadDir) }

// OutputDirExists reports whether the output area is present
func (m *Manager) OutputDirExists() bool { return isDir(m.outputDir) }

// Stage copies r to a fresh file in the upload area. Only a sanitized
// extension of originalName survives; a partially written file is removed.
func (m *Manager) Stage(r io.Reader, originalName string, role Role) (*StagedFile, error) {
	name := uuid.NewString() + SafeExt(originalName)
	path := filepath.Join(m.uploadDir, name)

	// O_EXCL makes a name collision an error instead of an overwrite
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o600)
	if err != nil {
		return nil, fmt.Errorf("failed to create %s file: %w", role, err)
	}

	if _, err := io.Copy(f, r); err != nil {
		_ = f.Close()
		removeQuietly(path)
		return nil, fmt.Errorf("failed to write %s file: %w", role, err)
	}
	if err := f.Close(); err != nil {
		removeQuietly(path)
		return nil, fmt.Errorf("failed to close %s file: %w", role, err)
	}

	return &StagedFile{OriginalName: originalName, Path: path, Role: role}, nil
}

// OutputFor returns the output file derived from a staged target. The file
// itself is produced by the executor.
func (m *Manager) OutputFor(target *StagedFile) *StagedFile {
	return &StagedFile{
		OriginalName: target.OriginalName,
		Path:         filepath.Join(m.outputDir, outputPrefix+target.Name()),
		Role:         RoleOutput,
	}
}

// Exists reports whether the staged file is present on disk
func (m *Manager) Exists(f *StagedFile) bool {
	if f == nil {
		return false
	}
	info, err := os.Stat(f.Path)
	return err == nil && info.Mode().IsRegular()
}

// Cleanup removes the given files. Nil entries and missing files are ignored;
// other failures are logged and never returned.
func (m *Manager) Cleanup(files ...*StagedFile) {
	for _, f := range files {
		if f == nil {
			continue
		}
		if err := os.Remove(f.Path); err != nil && !errors.Is(err, os.ErrNotExist) {
			logger.ErrorWithFields("Failed to clean up staged file", map[string]interface{}{
				"path":  f.Path,
				"role":  f.Role,
				"error": err.Error(),
			})
		}
	}
}

// Sweep removes output files last modified more than olderThan ago and
// returns how many were removed
func (m *Manager) Sweep(olderThan time.Duration) (int, error) {
	entries, err := os.ReadDir(m.outputDir)
	if err != nil {
		return 0, fmt.Errorf("failed to read output directory: %w", err)
	}

	cutoff := time.Now().Add(-olderThan)
	removed := 0
	for _, e := range entries {
		if !e.Type().IsRegular() || !strings.HasPrefix(e.Name(), outputPrefix) {
			continue
		}
		info, err := e.Info()
		if err != nil || info.ModTime().After(cutoff) {
			continue
		}
		path := filepath.Join(m.outputDir, e.Name())
		if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
			logger.Warnf("Failed to sweep output %s: %v", path, err)
			continue
		}
		removed++
	}
	return removed, nil
}

// SafeExt returns the lower-cased extension of name including the dot, or an
// empty string when the extension is missing or contains anything other
// than ASCII letters and digits.
func SafeExt(name string) string {
	// uploads from Windows clients may use backslashes
	base := filepath.Base(strings.ReplaceAll(name, `\`, "/"))
	ext := filepath.Ext(base)
	if len(ext) < 2 || len(ext) > maxExtLen+1 {
		return ""
	}
	for _, r := range ext[1:] {
		if !(r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' || r >= '0' && r <= '9') {
			return ""
		}
	}
	return strings.ToLower(ext)
}

func isDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

func removeQuietly(path string) {
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		logger.Warnf("Failed to remove partial file %s: %v", path, err)
	}
}
