package store

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"

	"github.com/nvandessel/hyperscore/internal/simulation"
)

// ExportJSONL writes every stored run as one JSON object per line, newest
// first.
func ExportJSONL(ctx context.Context, s ResultStore, w io.Writer) (int, error) {
	sums, err := s.List(ctx, Filter{})
	if err != nil {
		return 0, err
	}

	enc := json.NewEncoder(w)
	for i, sum := range sums {
		r, err := s.Get(ctx, sum.RunID)
		if err != nil {
			return i, err
		}
		if err := enc.Encode(r); err != nil {
			return i, fmt.Errorf("failed to write run %s: %w", sum.RunID, err)
		}
	}
	return len(sums), nil
}

// ImportJSONL saves every result in r. Unparseable lines are logged and
// skipped; blank lines are ignored.
func ImportJSONL(ctx context.Context, s ResultStore, r io.Reader, logger *slog.Logger) (int, error) {
	scanner := bufio.NewScanner(r)
	// Increase buffer size for long lines
	buf := make([]byte, 0, 64*1024)
	scanner.Buffer(buf, 16*1024*1024)

	imported := 0
	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		var res simulation.Result
		if err := json.Unmarshal(line, &res); err != nil || res.RunID == "" {
			if logger != nil {
				logger.Warn("skipping unparseable result line", "line", lineNum, "error", err)
			}
			continue
		}
		if err := s.Save(ctx, &res); err != nil {
			return imported, fmt.Errorf("failed to import run %s: %w", res.RunID, err)
		}
		imported++
	}

	if err := scanner.Err(); err != nil {
		return imported, fmt.Errorf("scanner error: %w", err)
	}
	return imported, nil
}
