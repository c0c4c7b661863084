package dataset

import (
	"bufio"
	"encoding/json"
	"io"
	"log/slog"
	"strings"
)

// Extract filters raw generator output down to clean QA records.
// Generator transcripts interleave JSON rows with prose, so only lines
// that start with '{' are considered; rows that fail to parse or carry
// no question/solutions are logged with their line number and skipped.
func Extract(r io.Reader) ([]QARecord, error) {
	var records []QARecord

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)

	line := 0
	for scanner.Scan() {
		line++
		text := scanner.Text()
		if !strings.HasPrefix(text, "{") {
			continue
		}

		var rec QARecord
		if err := json.Unmarshal([]byte(text), &rec); err != nil {
			slog.Warn("Invalid JSON in generator output", "line", line, "error", err)
			continue
		}
		if rec.Question == "" || len(rec.Solutions) == 0 {
			slog.Warn("Incomplete record in generator output", "line", line)
			continue
		}

		// Decoding into QARecord projects stray fields away
		records = append(records, rec)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}

	slog.Info("Extraction complete", "lines", line, "records", len(records))
	return records, nil
}

// ExtractString runs Extract over an in-memory transcript.
func ExtractString(raw string) ([]QARecord, error) {
	return Extract(strings.NewReader(raw))
}

// CleanFences strips a surrounding markdown code fence from a model
// response so the payload parses as JSON.
func CleanFences(raw string) string {
	s := strings.TrimSpace(raw)
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}
