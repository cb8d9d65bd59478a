package orca

import (
	"os"
	"path/filepath"
)

// WriteDocument renders doc and writes it to path.
//
// The document is fully composed before any file is touched. Parent
// directories are created as needed and the content lands via a temp file
// and rename, so a failed write never leaves a truncated input behind.
// Overwrite policy belongs to the caller.
func WriteDocument(path string, doc Document) error {
	text, err := doc.Render()
	if err != nil {
		return err
	}
	return writeFileAtomic(path, []byte(text))
}

func writeFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return &WriteError{Op: "mkdir", Path: path, Err: err}
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".tmp.*")
	if err != nil {
		return &WriteError{Op: "create", Path: path, Err: err}
	}
	tmpName := tmp.Name()
	defer func() { _ = os.Remove(tmpName) }()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return &WriteError{Op: "write", Path: path, Err: err}
	}
	if err := tmp.Chmod(0644); err != nil {
		_ = tmp.Close()
		return &WriteError{Op: "chmod", Path: path, Err: err}
	}
	if err := tmp.Close(); err != nil {
		return &WriteError{Op: "close", Path: path, Err: err}
	}
	if err := os.Rename(tmpName, path); err != nil {
		return &WriteError{Op: "rename", Path: path, Err: err}
	}
	return nil
}
