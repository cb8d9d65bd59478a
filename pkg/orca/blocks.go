package orca

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
)

// ReadBlock reads a literal block file verbatim.
//
// Trailing whitespace is trimmed and one newline re-appended. A missing file
// yields an error wrapping ErrBlockNotFound that names the path.
func ReadBlock(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", fmt.Errorf("%w: %s", ErrBlockNotFound, path)
		}
		return "", fmt.Errorf("read extra block %s: %w", path, err)
	}
	return NormalizeBlock(string(data)), nil
}

// ReadBlocks reads each path in order. The first failure aborts.
func ReadBlocks(paths []string) ([]string, error) {
	if len(paths) == 0 {
		return nil, nil
	}
	blocks := make([]string, 0, len(paths))
	for _, p := range paths {
		b, err := ReadBlock(p)
		if err != nil {
			return nil, err
		}
		blocks = append(blocks, b)
	}
	return blocks, nil
}
