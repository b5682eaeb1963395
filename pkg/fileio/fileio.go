// Copyright 2025 walteh LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package fileio is the scoped file access patchrc uses around the patch engine.
package fileio

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"unicode/utf8"

	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"
)

const (
	// BackupSuffix is appended to a file's path for its backup copy.
	BackupSuffix = ".bak"

	// LockSuffix is appended to a file's path for its lock file.
	LockSuffix = ".patchrc.lock"
)

var (
	// ErrLocked is returned when another run holds the lock on a file.
	ErrLocked = errors.Base("file is locked")

	// ErrNotText is returned for files that are not valid UTF-8.
	ErrNotText = errors.Base("file is not valid UTF-8 text")
)

// 💾 FileManager handles all file system operations around a patch run
type FileManager interface {
	// ReadText reads a UTF-8 text file and returns its content and mode.
	ReadText(ctx context.Context, path string) (string, os.FileMode, error)

	// WriteFileAtomic replaces path with content via a temp file and rename.
	WriteFileAtomic(ctx context.Context, path string, content []byte, mode os.FileMode) error

	// BackupFile copies path to path+BackupSuffix.
	BackupFile(ctx context.Context, path string) error

	// Lock takes an exclusive lock on path. The returned func releases it.
	Lock(ctx context.Context, path string) (func() error, error)
}

// 🔧 Manager implements FileManager on the local file system
type Manager struct{}

var _ FileManager = (*Manager)(nil)

// 🏭 New creates a new file manager
func New() *Manager {
	return &Manager{}
}

func (m *Manager) ReadText(ctx context.Context, path string) (string, os.FileMode, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", 0, errors.Errorf("opening file: %w", err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return "", 0, errors.Errorf("stat file: %w", err)
	}

	content, err := io.ReadAll(f)
	if err != nil {
		return "", 0, errors.Errorf("reading file: %w", err)
	}

	if !utf8.Valid(content) {
		return "", 0, errors.Errorf("%w: %s", ErrNotText, path)
	}

	zerolog.Ctx(ctx).Trace().Str("path", path).Int("bytes", len(content)).Msg("read file")
	return string(content), info.Mode().Perm(), nil
}

func (m *Manager) WriteFileAtomic(ctx context.Context, path string, content []byte, mode os.FileMode) error {
	if mode == 0 {
		mode = 0644
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return errors.Errorf("creating temp file: %w", err)
	}
	tempPath := tmp.Name()

	// Clean up the temp file on any failure below
	committed := false
	defer func() {
		if !committed {
			os.Remove(tempPath)
		}
	}()

	if _, err := tmp.Write(content); err != nil {
		tmp.Close()
		return errors.Errorf("writing temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return errors.Errorf("closing temp file: %w", err)
	}
	if err := os.Chmod(tempPath, mode); err != nil {
		return errors.Errorf("setting file mode: %w", err)
	}

	// Rename temp file to target (atomic operation)
	if err := os.Rename(tempPath, path); err != nil {
		return errors.Errorf("renaming temp file: %w", err)
	}
	committed = true

	zerolog.Ctx(ctx).Debug().Str("path", path).Int("bytes", len(content)).Msg("wrote file")
	return nil
}

func (m *Manager) BackupFile(ctx context.Context, path string) error {
	backupPath := path + BackupSuffix

	if err := copyFile(path, backupPath); err != nil {
		return errors.Errorf("creating backup: %w", err)
	}

	zerolog.Ctx(ctx).Debug().Str("path", path).Str("backup", backupPath).Msg("backed up file")
	return nil
}

func (m *Manager) Lock(ctx context.Context, path string) (func() error, error) {
	lockPath := path + LockSuffix

	f, err := os.OpenFile(lockPath, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0644)
	if os.IsExist(err) {
		return nil, errors.Errorf("%w: %s (delete it if no other patchrc run is active)", ErrLocked, lockPath)
	}
	if err != nil {
		return nil, errors.Errorf("creating lock file: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(lockPath)
		return nil, errors.Errorf("closing lock file: %w", err)
	}

	logger := zerolog.Ctx(ctx)
	logger.Debug().Str("path", path).Msg("acquired lock")

	return func() error {
		if err := os.Remove(lockPath); err != nil && !os.IsNotExist(err) {
			return errors.Errorf("removing lock file: %w", err)
		}
		logger.Debug().Str("path", path).Msg("released lock")
		return nil
	}, nil
}

func copyFile(src, dst string) error {
	source, err := os.Open(src)
	if err != nil {
		return errors.Errorf("opening source file: %w", err)
	}
	defer source.Close()

	info, err := source.Stat()
	if err != nil {
		return errors.Errorf("stat source file: %w", err)
	}

	destination, err := os.OpenFile(dst, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, info.Mode().Perm())
	if err != nil {
		return errors.Errorf("creating destination file: %w", err)
	}
	defer destination.Close()

	if _, err := io.Copy(destination, source); err != nil {
		return errors.Errorf("copying file: %w", err)
	}

	return destination.Close()
}
