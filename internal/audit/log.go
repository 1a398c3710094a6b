package audit

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Log appends gate decisions to a hash-chained JSONL file. Each hook call
// runs in its own process, so Open re-derives the chain head from whatever
// the last line on disk is.
type Log struct {
	mu   sync.Mutex
	path string
	file *os.File
	head string
}

// Open prepares path for appending, creating it and its directory on first
// use.
func Open(path string) (*Log, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, fmt.Errorf("audit: create directory: %w", err)
	}
	file, err := os.OpenFile(path, os.O_RDWR|os.O_APPEND|os.O_CREATE, 0o600)
	if err != nil {
		return nil, fmt.Errorf("audit: open file: %w", err)
	}
	head, err := chainHead(file)
	if err != nil {
		file.Close()
		return nil, fmt.Errorf("audit: recover chain head: %w", err)
	}
	return &Log{path: path, file: file, head: head}, nil
}

// chainHead hashes the last non-empty line of f, or returns GenesisHash for
// an empty file. Only the tail of the file is read.
func chainHead(f *os.File) (string, error) {
	info, err := f.Stat()
	if err != nil {
		return "", err
	}
	size := info.Size()
	if size == 0 {
		return GenesisHash, nil
	}

	window := int64(4096)
	for {
		if window > size {
			window = size
		}
		buf := make([]byte, window)
		if _, err := f.ReadAt(buf, size-window); err != nil && err != io.EOF {
			return "", err
		}
		trimmed := bytes.TrimRight(buf, "\r\n")
		if len(trimmed) == 0 && window == size {
			return GenesisHash, nil
		}
		if i := bytes.LastIndexByte(trimmed, '\n'); i >= 0 {
			return HashLine(trimmed[i+1:]), nil
		}
		if window == size {
			return HashLine(trimmed), nil
		}
		window *= 2
	}
}

// Record stamps e with an ID, a timestamp and the current chain head, then
// appends it and syncs. Caller-set ID and Timestamp are kept.
func (l *Log) Record(e AuditEntry) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	line, err := l.seal(e)
	if err != nil {
		return err
	}
	if _, err := l.file.Write(append(line, '\n')); err != nil {
		return fmt.Errorf("audit: write entry: %w", err)
	}
	if err := l.file.Sync(); err != nil {
		return fmt.Errorf("audit: sync: %w", err)
	}
	l.head = HashLine(line)
	return nil
}

func (l *Log) seal(e AuditEntry) ([]byte, error) {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.Timestamp == "" {
		e.Timestamp = time.Now().UTC().Format(TimestampFormat)
	}
	e.PrevHash = l.head
	line, err := json.Marshal(e)
	if err != nil {
		return nil, fmt.Errorf("audit: marshal entry: %w", err)
	}
	return line, nil
}

// Path returns the log file location.
func (l *Log) Path() string { return l.path }

// Close releases the file handle.
func (l *Log) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.file.Close()
}
