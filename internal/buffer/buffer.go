// Package buffer provides a local file-based archive of snapshots.
// Each snapshot is written as a timestamped JSON file, so the archive
// survives restarts. A size cap drops the oldest files first.
package buffer

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/Guliveer/hwprobe/internal/models"
)

const fileTimeLayout = "20060102T150405.000000000"

// Buffer stores snapshots in a directory, one JSON file per snapshot.
type Buffer struct {
	dir      string
	maxBytes int64
	logger   *zap.Logger
	mu       sync.Mutex
	now      func() time.Time
}

// New creates a buffer at dir, creating the directory if needed. maxSizeMB
// caps the total size of the archive; zero or less disables the cap.
func New(dir string, maxSizeMB int, logger *zap.Logger) (*Buffer, error) {
	if err := os.MkdirAll(dir, 0750); err != nil {
		return nil, fmt.Errorf("creating archive directory: %w", err)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Buffer{
		dir:      dir,
		maxBytes: int64(maxSizeMB) << 20,
		logger:   logger,
		now:      time.Now,
	}, nil
}

// Dir returns the archive directory.
func (b *Buffer) Dir() string { return b.dir }

// Store writes snap to a new file. Oldest files are dropped until the new
// one fits under the size cap.
func (b *Buffer) Store(snap models.Snapshot) error {
	data, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("encoding snapshot: %w", err)
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if b.maxBytes > 0 {
		for b.currentSize()+int64(len(data)) > b.maxBytes {
			if !b.dropOldest() {
				break
			}
		}
	}

	path := b.nextPath()
	if err := os.WriteFile(path, data, 0640); err != nil {
		return fmt.Errorf("writing snapshot: %w", err)
	}
	return nil
}

// Load returns every archived snapshot in chronological order without
// removing it. Corrupted files are logged and removed.
func (b *Buffer) Load() ([]models.Snapshot, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.load(false)
}

// Drain returns every archived snapshot in chronological order and removes
// the files.
func (b *Buffer) Drain() ([]models.Snapshot, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.load(true)
}

// Count returns the number of archived snapshot files.
func (b *Buffer) Count() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	files, err := b.files()
	if err != nil {
		return 0
	}
	return len(files)
}

func (b *Buffer) load(remove bool) ([]models.Snapshot, error) {
	files, err := b.files()
	if err != nil {
		return nil, fmt.Errorf("listing archive: %w", err)
	}

	snaps := make([]models.Snapshot, 0, len(files))
	for _, path := range files {
		data, err := os.ReadFile(path)
		if err != nil {
			b.logger.Warn("Failed to read archive file",
				zap.String("file", path),
				zap.Error(err))
			continue
		}

		var snap models.Snapshot
		if err := json.Unmarshal(data, &snap); err != nil {
			b.logger.Warn("Failed to parse archive file, removing corrupted file",
				zap.String("file", path),
				zap.Error(err))
			os.Remove(path)
			continue
		}

		snaps = append(snaps, snap)
		if remove {
			os.Remove(path)
		}
	}
	return snaps, nil
}

// files lists the archive files oldest first. The name layout sorts
// chronologically. Must be called with b.mu held.
func (b *Buffer) files() ([]string, error) {
	entries, err := os.ReadDir(b.dir)
	if err != nil {
		return nil, err
	}
	var files []string
	for _, e := range entries {
		if !e.IsDir() && filepath.Ext(e.Name()) == ".json" {
			files = append(files, filepath.Join(b.dir, e.Name()))
		}
	}
	sort.Strings(files)
	return files, nil
}

// nextPath returns a file name for the current time. Within one clock tick
// the counter suffix continues past the largest existing one, so a name
// freed by dropOldest is never reused out of order.
// Must be called with b.mu held.
func (b *Buffer) nextPath() string {
	stamp := b.now().UTC().Format(fileTimeLayout)
	next := 0
	if files, err := b.files(); err == nil {
		prefix := stamp + "-"
		for _, path := range files {
			name := strings.TrimSuffix(filepath.Base(path), ".json")
			if !strings.HasPrefix(name, prefix) {
				continue
			}
			if n, err := strconv.Atoi(strings.TrimPrefix(name, prefix)); err == nil && n >= next {
				next = n + 1
			}
		}
	}
	return filepath.Join(b.dir, fmt.Sprintf("%s-%03d.json", stamp, next))
}

// currentSize returns the total size of all archive files in bytes.
// Must be called with b.mu held.
func (b *Buffer) currentSize() int64 {
	files, err := b.files()
	if err != nil {
		return 0
	}
	var total int64
	for _, path := range files {
		if info, err := os.Stat(path); err == nil {
			total += info.Size()
		}
	}
	return total
}

// dropOldest removes the oldest archive file. It returns false when nothing
// could be removed. Must be called with b.mu held.
func (b *Buffer) dropOldest() bool {
	files, err := b.files()
	if err != nil || len(files) == 0 {
		return false
	}
	if err := os.Remove(files[0]); err != nil {
		b.logger.Warn("Failed to remove oldest archive file",
			zap.String("file", files[0]),
			zap.Error(err))
		return false
	}
	b.logger.Warn("Archive full, dropped oldest snapshot", zap.String("file", files[0]))
	return true
}
