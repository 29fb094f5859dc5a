package records

import "github.com/verte-zerg/playlog/internal/model"

// Partition splits recs into min(workers, len(recs)) contiguous chunks whose
// sizes differ by at most one. Leading chunks take the remainder.
func Partition(recs []model.Record, workers int) [][]model.Record {
	if len(recs) == 0 {
		return nil
	}
	if workers < 1 {
		workers = 1
	}
	if workers > len(recs) {
		workers = len(recs)
	}
	base := len(recs) / workers
	extra := len(recs) % workers
	chunks := make([][]model.Record, 0, workers)
	start := 0
	for i := 0; i < workers; i++ {
		size := base
		if i < extra {
			size++
		}
		chunks = append(chunks, recs[start:start+size:start+size])
		start += size
	}
	return chunks
}
