package apply

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// BackupDir is where pre-images live, relative to the project root.
const BackupDir = ".stackshift/backups"

// backupRecord is one append-only log entry. Records are never deleted by
// the tool; cleanup is an explicit user action.
type backupRecord struct {
	Path      string    `json:"path"`   // project-relative path of the edited file
	Backup    string    `json:"backup"` // backup filename under BackupDir
	Timestamp time.Time `json:"timestamp"`
}

// BackupStore keeps pre-images of every file the pipeline rewrites, as an
// append-only log. "Most recent backup for a path" is a pure query over the
// log, so per-file .bak suffixes and timestamped snapshots collapse into one
// mechanism.
type BackupStore struct {
	root string
	dir  string
	log  string
}

// NewBackupStore creates (if needed) the backup directory under root.
func NewBackupStore(root string) (*BackupStore, error) {
	dir := filepath.Join(root, filepath.FromSlash(BackupDir))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating backup dir: %w", err)
	}
	return &BackupStore{root: root, dir: dir, log: filepath.Join(dir, "log.jsonl")}, nil
}

// Record stores preImage as the newest backup for rel and appends a log
// entry. Called immediately before a mutating write.
func (s *BackupStore) Record(rel string, preImage []byte) error {
	now := time.Now()
	name := fmt.Sprintf("%s.%d.bak", filepath.Base(rel), now.UnixNano())
	if err := os.WriteFile(filepath.Join(s.dir, name), preImage, 0o644); err != nil {
		return fmt.Errorf("writing backup for %s: %w", rel, err)
	}

	f, err := os.OpenFile(s.log, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return err
	}
	defer f.Close()

	entry, err := json.Marshal(backupRecord{Path: rel, Backup: name, Timestamp: now})
	if err != nil {
		return err
	}
	_, err = f.Write(append(entry, '\n'))
	return err
}

// LatestFor returns the newest pre-image recorded for rel, or os.ErrNotExist
// when the path was never backed up.
func (s *BackupStore) LatestFor(rel string) ([]byte, error) {
	records, err := s.readLog()
	if err != nil {
		return nil, err
	}
	for i := len(records) - 1; i >= 0; i-- {
		if records[i].Path == rel {
			return os.ReadFile(filepath.Join(s.dir, records[i].Backup))
		}
	}
	return nil, os.ErrNotExist
}

// Paths returns every distinct path with at least one backup, in first-seen
// order.
func (s *BackupStore) Paths() ([]string, error) {
	records, err := s.readLog()
	if err != nil {
		return nil, err
	}
	seen := map[string]bool{}
	var paths []string
	for _, rec := range records {
		if !seen[rec.Path] {
			seen[rec.Path] = true
			paths = append(paths, rec.Path)
		}
	}
	return paths, nil
}

// Restore copies the newest backup for rel back over the live file.
func (s *BackupStore) Restore(rel string) error {
	data, err := s.LatestFor(rel)
	if err != nil {
		return fmt.Errorf("no backup for %s: %w", rel, err)
	}
	return os.WriteFile(filepath.Join(s.root, filepath.FromSlash(rel)), data, 0o644)
}

func (s *BackupStore) readLog() ([]backupRecord, error) {
	f, err := os.Open(s.log)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	defer f.Close()

	var records []backupRecord
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		var rec backupRecord
		if err := json.Unmarshal(scanner.Bytes(), &rec); err != nil {
			continue // a torn tail line must not block rollback
		}
		records = append(records, rec)
	}
	return records, scanner.Err()
}
