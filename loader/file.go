package loader

import (
	"bufio"
	"context"
	"fmt"
	"os"
)

// FileSource reads one ballot per line from a text file
type FileSource struct {
	Path string
}

func (f FileSource) Lines(ctx context.Context) ([]string, error) {
	file, err := os.Open(f.Path)
	if err != nil {
		return nil, fmt.Errorf("open ballot file %s: %w", f.Path, err)
	}
	defer file.Close()

	var lines []string
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		lines = append(lines, scanner.Text())
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read ballot file %s: %w", f.Path, err)
	}

	return lines, nil
}

// StaticSource serves lines that are already in memory
type StaticSource []string

func (s StaticSource) Lines(ctx context.Context) ([]string, error) {
	return []string(s), nil
}
