/*
Copyright 2026 The consulk8s contributors.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package publisher

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"

	"github.com/spf13/afero"
	"go.uber.org/zap"

	consulv1 "github.com/consulk8s/consulk8s/pkg/apis/consul/v1"
)

const (
	defaultFileMode fs.FileMode = 0o644
	maxSymlinks                 = 40
)

// FilePublisher writes all services into a single JSON file read by the
// Consul agent. The file is only rewritten when its content changes.
type FilePublisher struct {
	Fs         afero.Fs
	Path       string
	SkipChecks bool
	Log        *zap.SugaredLogger
}

var _ Publisher = &FilePublisher{}

// NewFilePublisher returns a FilePublisher on the OS filesystem.
func NewFilePublisher(log *zap.SugaredLogger, path string, skipChecks bool) *FilePublisher {
	return &FilePublisher{
		Fs:         afero.NewOsFs(),
		Path:       path,
		SkipChecks: skipChecks,
		Log:        log,
	}
}

func (p *FilePublisher) Publish(_ context.Context, services []consulv1.Service) (Outcome, error) {
	l := p.Log.With("file", p.Path)

	if services == nil {
		services = []consulv1.Service{}
	}
	if p.SkipChecks {
		services = stripChecks(services)
	}

	data, err := Marshal(consulv1.ServiceFile{Services: services})
	if err != nil {
		return Outcome{}, fmt.Errorf("failed to serialize services: %w", err)
	}

	l.Debug("Reading current service file")
	previous, exists, err := p.read()
	if err != nil {
		return Outcome{}, err
	}

	if !HasChanged(data, previous, exists) {
		l.Info("No changes")
		return Outcome{Changed: false}, nil
	}

	l.Infow("Writing service file", "services", len(services))
	if err := p.write(data); err != nil {
		return Outcome{}, err
	}

	return Outcome{Changed: true}, nil
}

func (p *FilePublisher) read() ([]byte, bool, error) {
	data, err := afero.ReadFile(p.Fs, p.Path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("failed to read %s: %w", p.Path, err)
	}
	return data, true, nil
}

// write replaces the file atomically so that the agent never reads a
// partially written document. A symlinked path is written through, and the
// permissions of an existing file are kept.
func (p *FilePublisher) write(data []byte) error {
	path, err := p.resolve()
	if err != nil {
		return err
	}

	dir, base := filepath.Split(path)
	if dir == "" {
		dir = "."
	}

	if err := p.Fs.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", dir, err)
	}

	mode := defaultFileMode
	if info, err := p.Fs.Stat(path); err == nil {
		mode = info.Mode().Perm()
	}

	tmp, err := afero.TempFile(p.Fs, dir, "."+base+".tmp")
	if err != nil {
		return fmt.Errorf("failed to create temporary file: %w", err)
	}
	tmpName := tmp.Name()

	_, err = tmp.Write(data)
	if closeErr := tmp.Close(); err == nil {
		err = closeErr
	}
	if err == nil {
		err = p.Fs.Chmod(tmpName, mode)
	}
	if err == nil {
		err = p.Fs.Rename(tmpName, path)
	}
	if err != nil {
		_ = p.Fs.Remove(tmpName)
		return fmt.Errorf("failed to write %s: %w", p.Path, err)
	}

	return nil
}

// resolve follows symlinks from Path to the file they point to. Paths that
// are not links, and filesystems without link support, resolve to themselves.
func (p *FilePublisher) resolve() (string, error) {
	reader, ok := p.Fs.(afero.LinkReader)
	if !ok {
		return p.Path, nil
	}

	path := p.Path
	for range maxSymlinks {
		target, err := reader.ReadlinkIfPossible(path)
		if err != nil {
			return path, nil
		}
		if !filepath.IsAbs(target) {
			target = filepath.Join(filepath.Dir(path), target)
		}
		path = target
	}

	return "", fmt.Errorf("failed to resolve %s: too many levels of symbolic links", p.Path)
}
