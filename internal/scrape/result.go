package scrape

import "github.com/rs/zerolog"

// RowResult carries one row's extraction outcome. Row failures are data, not
// control flow: the caller aggregates results and keeps going.
type RowResult[T any] struct {
	Index  int
	Record T
	Err    error
}

// Ok wraps a successfully extracted record
func Ok[T any](index int, record T) RowResult[T] {
	return RowResult[T]{Index: index, Record: record}
}

// Skip marks a row as skipped with the reason
func Skip[T any](index int, err error) RowResult[T] {
	return RowResult[T]{Index: index, Err: err}
}

// Collect returns the successfully extracted records, logging one error per
// skipped row with its index.
func Collect[T any](log zerolog.Logger, results []RowResult[T]) []T {
	records := make([]T, 0, len(results))
	for _, r := range results {
		if r.Err != nil {
			log.Error().Err(r.Err).Int("row", r.Index).Msg("Skipping row")
			continue
		}
		records = append(records, r.Record)
	}

	return records
}
