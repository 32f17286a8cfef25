package logging

import (
	"bufio"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"gopkg.in/natefinch/lumberjack.v2"
)

// RotatingJSONLStore stores records in a JSONL file with automatic rotation.
type RotatingJSONLStore struct {
	mu     sync.Mutex
	logger *lumberjack.Logger
	path   string
}

// NewRotatingJSONLStore creates a store with rotation options in megabytes and days.
func NewRotatingJSONLStore(path string, maxSizeMB, maxBackups, maxAgeDays int) (*RotatingJSONLStore, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, err
		}
	}
	lj := &lumberjack.Logger{
		Filename:   path,
		MaxSize:    maxSizeMB,
		MaxBackups: maxBackups,
		MaxAge:     maxAgeDays,
	}
	return &RotatingJSONLStore{logger: lj, path: path}, nil
}

// Append writes the record and triggers rotation if needed.
func (s *RotatingJSONLStore) Append(_ context.Context, rec LogRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return json.NewEncoder(s.logger).Encode(rec)
}

// Query reads the active file and its rotated backups. Malformed lines are
// skipped.
func (s *RotatingJSONLStore) Query(ctx context.Context, q LogQuery) ([]LogRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	files, err := filepath.Glob(s.backupGlob())
	if err != nil {
		return nil, err
	}
	if _, err := os.Stat(s.path); err == nil {
		files = append(files, s.path)
	}
	var res []LogRecord
	for _, f := range files {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		recs, err := scanFile(f, q)
		if err != nil {
			return nil, err
		}
		res = append(res, recs...)
	}
	sort.SliceStable(res, func(i, j int) bool { return res[i].Timestamp.Before(res[j].Timestamp) })
	return res, nil
}

// backupGlob matches the names lumberjack gives rotated files:
// <name>-<timestamp><ext>.
func (s *RotatingJSONLStore) backupGlob() string {
	ext := filepath.Ext(s.path)
	return s.path[:len(s.path)-len(ext)] + "-*" + ext
}

func scanFile(path string, q LogQuery) ([]LogRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()
	var res []LogRecord
	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	for sc.Scan() {
		var r LogRecord
		if err := json.Unmarshal(sc.Bytes(), &r); err != nil {
			continue
		}
		if q.Matches(r) {
			res = append(res, r)
		}
	}
	return res, sc.Err()
}

// Close closes the underlying writer.
func (s *RotatingJSONLStore) Close() error {
	return s.logger.Close()
}
