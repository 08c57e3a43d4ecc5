// Package chunk partitions an ordered document list into bounded-size chunks,
// one external batch job per chunk.
package chunk

import (
	"fmt"

	"github.com/joseph-ayodele/docpipeline/internal/common"
)

// Plan splits paths into ceil(len(paths)/size) chunks that preserve the input
// order. Every chunk except possibly the last has exactly size elements.
func Plan(paths []string, size int) ([][]string, error) {
	if size < 1 {
		return nil, fmt.Errorf("chunk size %d: %w", size, common.ErrInvalidConfig)
	}

	chunks := make([][]string, 0, (len(paths)+size-1)/size)
	for i := 0; i < len(paths); i += size {
		end := i + size
		if end > len(paths) {
			end = len(paths)
		}
		chunks = append(chunks, paths[i:end:end])
	}
	return chunks, nil
}
