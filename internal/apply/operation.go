// Package apply executes planned edits against the project tree: file
// writes, route-file moves, and oracle-sourced fixes. All mutation funnels
// through here so the pipeline can serialize writes, keep backups, and roll
// back.
package apply

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
)

// Operation is a filesystem edit that can be validated before execution.
//
// Validate checks whether the operation would succeed; force skips conflict
// checks on existing targets. Execute performs the edit and should only run
// after Validate passes. Description is a human-readable summary for output.
type Operation interface {
	Validate(ctx context.Context, force bool) error
	Execute(ctx context.Context) error
	Description() string
}

// WriteFileOp creates or replaces a file.
type WriteFileOp struct {
	Path    string
	Content []byte
	Mode    fs.FileMode

	// Overwrite suppresses the conflict check for merge-style writes
	// (tsconfig.json, .env.local) where replacing the file is the point.
	Overwrite bool
}

func (op *WriteFileOp) Validate(ctx context.Context, force bool) error {
	dir := filepath.Dir(op.Path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("cannot create directory %s: %w", dir, err)
	}
	if !force && !op.Overwrite {
		if _, err := os.Stat(op.Path); err == nil {
			return fmt.Errorf("file already exists: %s", op.Path)
		}
	}
	if op.Content == nil {
		return fmt.Errorf("content is nil for file: %s", op.Path)
	}
	return nil
}

func (op *WriteFileOp) Execute(ctx context.Context) error {
	if err := os.MkdirAll(filepath.Dir(op.Path), 0o755); err != nil {
		return err
	}
	mode := op.Mode
	if mode == 0 {
		mode = 0o644
	}
	return os.WriteFile(op.Path, op.Content, mode)
}

func (op *WriteFileOp) Description() string {
	return fmt.Sprintf("Write %s (%d bytes)", op.Path, len(op.Content))
}

// MoveFileOp relocates a file, creating target directories as needed. Used
// for route files and their co-located assets.
type MoveFileOp struct {
	Source string
	Target string
}

func (op *MoveFileOp) Validate(ctx context.Context, force bool) error {
	if _, err := os.Stat(op.Source); err != nil {
		return fmt.Errorf("move source missing: %s", op.Source)
	}
	if err := os.MkdirAll(filepath.Dir(op.Target), 0o755); err != nil {
		return err
	}
	if !force {
		if _, err := os.Stat(op.Target); err == nil {
			return fmt.Errorf("move target already exists: %s", op.Target)
		}
	}
	return nil
}

func (op *MoveFileOp) Execute(ctx context.Context) error {
	if err := os.MkdirAll(filepath.Dir(op.Target), 0o755); err != nil {
		return err
	}
	return os.Rename(op.Source, op.Target)
}

func (op *MoveFileOp) Description() string {
	return fmt.Sprintf("Move %s -> %s", op.Source, op.Target)
}

// ExecuteOptions configures a run of planned operations.
type ExecuteOptions struct {
	DryRun bool
	Force  bool
	Writer io.Writer // defaults to os.Stdout
}

// Execute validates every operation, then runs them sequentially. Filesystem
// mutation is serialized here: one operation is in flight at a time, in plan
// order.
func Execute(ctx context.Context, ops []Operation, opts ExecuteOptions) error {
	if opts.Writer == nil {
		opts.Writer = os.Stdout
	}

	for _, op := range ops {
		if err := op.Validate(ctx, opts.Force); err != nil {
			return fmt.Errorf("validation failed: %w", err)
		}
	}

	for _, op := range ops {
		if opts.DryRun {
			fmt.Fprintf(opts.Writer, "[dry-run] %s\n", op.Description())
			continue
		}
		if err := op.Execute(ctx); err != nil {
			return fmt.Errorf("execution failed: %w", err)
		}
		fmt.Fprintf(opts.Writer, "%s\n", op.Description())
	}
	return nil
}
