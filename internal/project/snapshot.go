package project

import (
	"os"
	"path/filepath"
)

// Role classifies what part a file plays in the project.
type Role int

const (
	RoleOther Role = iota
	RoleManifest
	RoleBuildConfig
	RoleSource
	RoleEnv
)

func (r Role) String() string {
	switch r {
	case RoleManifest:
		return "manifest"
	case RoleBuildConfig:
		return "build_config"
	case RoleSource:
		return "source"
	case RoleEnv:
		return "env"
	default:
		return "other"
	}
}

// FileRecord describes one file discovered during a scan. Content is not
// held here; use Snapshot.Content to read it on demand.
type FileRecord struct {
	Path string // relative to the project root, slash-separated
	Role Role
	Size int64
}

// Snapshot is an immutable view of a project at scan time. Re-scanning
// produces a new snapshot; nothing mutates an existing one.
type Snapshot struct {
	Root     string
	Files    map[string]FileRecord
	Manifest *Manifest

	// ManifestErr carries a parse failure for package.json. The scan itself
	// still succeeds; dependency planning degrades and surfaces this.
	ManifestErr error
}

// Content reads a file's bytes lazily. rel is a slash-separated path as
// recorded in Files.
func (s *Snapshot) Content(rel string) ([]byte, error) {
	return os.ReadFile(filepath.Join(s.Root, filepath.FromSlash(rel)))
}

// FilesWithRole returns the records matching a role, in no particular order.
func (s *Snapshot) FilesWithRole(role Role) []FileRecord {
	var out []FileRecord
	for _, rec := range s.Files {
		if rec.Role == role {
			out = append(out, rec)
		}
	}
	return out
}

// Exists reports whether a relative path was seen during the scan.
func (s *Snapshot) Exists(rel string) bool {
	_, ok := s.Files[rel]
	return ok
}
