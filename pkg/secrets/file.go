package secrets

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"
)

// FileSource reads secrets from individual files in a directory, one file
// per secret, as mounted by Kubernetes or Docker secrets.
//
// Files must be regular files with mode 0600 or 0400. Values are trimmed of
// surrounding whitespace and cached until the directory changes (when
// watching) or Refresh is called.
type FileSource struct {
	dir string

	mu       sync.RWMutex
	cache    map[string]string
	onChange []func()

	watcher *fsnotify.Watcher
	stopCh  chan struct{}
	done    chan struct{}
}

// NewFileSource creates a file source rooted at dir. With watch set, writes,
// creates, renames and removes in dir drop the cache.
func NewFileSource(dir string, watch bool) (*FileSource, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to stat secrets directory: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("secrets path is not a directory: %s", dir)
	}

	s := &FileSource{
		dir:   dir,
		cache: make(map[string]string),
	}

	if watch {
		w, err := fsnotify.NewWatcher()
		if err != nil {
			return nil, fmt.Errorf("failed to create file watcher: %w", err)
		}
		if err := w.Add(dir); err != nil {
			_ = w.Close()
			return nil, fmt.Errorf("failed to watch secrets directory: %w", err)
		}
		s.watcher = w
		s.stopCh = make(chan struct{})
		s.done = make(chan struct{})
		go s.watchLoop()
	}

	slog.Info("file secret source started", "path", dir, "watch", watch)
	return s, nil
}

// Lookup implements Source.
func (s *FileSource) Lookup(_ context.Context, name string) (string, error) {
	s.mu.RLock()
	value, ok := s.cache[name]
	s.mu.RUnlock()
	if ok {
		return value, nil
	}

	path, err := s.path(name)
	if err != nil {
		return "", err
	}

	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", fmt.Errorf("%w: no file for %s", ErrNotFound, name)
		}
		return "", fmt.Errorf("failed to stat secret file: %w", err)
	}
	if !info.Mode().IsRegular() {
		return "", fmt.Errorf("secret path is not a regular file: %s", name)
	}
	if mode := info.Mode().Perm(); mode != 0600 && mode != 0400 {
		return "", fmt.Errorf("insecure permissions on %s: %o (expected 0600 or 0400)", path, mode)
	}

	// #nosec G304 - path is confined to dir
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read secret file: %w", err)
	}
	value = strings.TrimSpace(string(data))

	s.mu.Lock()
	s.cache[name] = value
	s.mu.Unlock()

	return value, nil
}

// Name implements Source.
func (s *FileSource) Name() string {
	return "file"
}

// Refresh drops every cached value.
func (s *FileSource) Refresh() {
	s.mu.Lock()
	s.cache = make(map[string]string)
	s.mu.Unlock()
}

// OnChange registers fn to run after the watched directory changes.
func (s *FileSource) OnChange(fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onChange = append(s.onChange, fn)
}

// Close stops the watcher, if any.
func (s *FileSource) Close() error {
	if s.watcher == nil {
		return nil
	}
	close(s.stopCh)
	err := s.watcher.Close()
	<-s.done
	return err
}

// path joins name onto dir and rejects anything that escapes it.
func (s *FileSource) path(name string) (string, error) {
	if name == "" || strings.ContainsAny(name, `/\`) || name == "." || name == ".." {
		return "", fmt.Errorf("invalid secret name %q", name)
	}
	return filepath.Join(s.dir, name), nil
}

func (s *FileSource) watchLoop() {
	defer close(s.done)

	for {
		select {
		case <-s.stopCh:
			return

		case event, ok := <-s.watcher.Events:
			if !ok {
				return
			}
			if event.Op == fsnotify.Chmod {
				continue
			}

			slog.Debug("secret file changed, dropping cache",
				"file", filepath.Base(event.Name),
				"op", event.Op.String(),
			)
			s.Refresh()

			s.mu.RLock()
			callbacks := append([]func(){}, s.onChange...)
			s.mu.RUnlock()
			for _, fn := range callbacks {
				fn()
			}

		case err, ok := <-s.watcher.Errors:
			if !ok {
				return
			}
			slog.Error("secret file watcher error", "error", err)
		}
	}
}
