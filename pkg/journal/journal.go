package journal

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"indexfund-api/pkg/registry"
)

// BatchRecord captures one committed weight batch for audit.
type BatchRecord struct {
	Timestamp  time.Time              `json:"timestamp"`
	RegistryID string                 `json:"registry_id"`
	Sequence   int                    `json:"sequence"`
	Caller     registry.Identity      `json:"caller"`
	Updates    []registry.AssetWeight `json:"updates"`
	Weights    []registry.AssetWeight `json:"weights"`
	Nonce      int64                  `json:"nonce,omitempty"`
}

// Writer persists batch records to a directory as JSON files (journal style).
type Writer struct {
	dir   string
	mu    sync.Mutex
	seq   int
	nowFn func() time.Time
}

// NewWriter constructs a journal writer rooted at dir.
func NewWriter(dir string) (*Writer, error) {
	if dir == "" {
		dir = "journal"
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("journal: create dir %s: %w", dir, err)
	}
	return &Writer{dir: dir, nowFn: time.Now}, nil
}

// Dir returns the directory records are written to.
func (w *Writer) Dir() string { return w.dir }

// WriteBatch writes a record to a timestamped JSON file and returns its path.
func (w *Writer) WriteBatch(rec *BatchRecord) (string, error) {
	if rec == nil {
		return "", fmt.Errorf("journal: nil record")
	}
	w.mu.Lock()
	defer w.mu.Unlock()

	if rec.Timestamp.IsZero() {
		rec.Timestamp = w.nowFn()
	}
	w.seq++
	rec.Sequence = w.seq
	name := fmt.Sprintf("batch_%s_%05d.json", rec.Timestamp.UTC().Format("20060102_150405"), w.seq)
	path := filepath.Join(w.dir, name)
	data, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return "", err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", err
	}
	return path, nil
}

// ReadBatch loads a record previously written by WriteBatch.
func ReadBatch(path string) (*BatchRecord, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var rec BatchRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("journal: decode %s: %w", path, err)
	}
	return &rec, nil
}
