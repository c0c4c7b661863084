// Package dataset holds the record shapes and JSONL plumbing shared by
// the generation, extraction and training pipelines.
package dataset

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"math/rand"
	"os"
)

// QARecord is one verifiable-reward training example: a question and
// the list of acceptable answer variants.
type QARecord struct {
	Question  string   `json:"question"`
	Solutions []string `json:"solutions"`
}

// PersonaRecord is one raw generated example before extraction:
// question, in-character internal reasoning, and the spoken answer.
type PersonaRecord struct {
	Question  string `json:"question"`
	Reasoning string `json:"reasoning"`
	Answer    string `json:"answer"`
}

// ChatRecord is one SFT example already shaped as a turn list. The
// turns stay raw here; canonicalization owns their field naming.
type ChatRecord struct {
	Messages json.RawMessage `json:"messages"`
}

// ReadJSONL decodes every line of r into T, in file order.
func ReadJSONL[T any](r io.Reader) ([]T, error) {
	var records []T
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)

	line := 0
	for scanner.Scan() {
		line++
		raw := scanner.Bytes()
		if len(raw) == 0 {
			continue
		}
		var rec T
		if err := json.Unmarshal(raw, &rec); err != nil {
			return nil, fmt.Errorf("invalid JSON at line %d: %w", line, err)
		}
		records = append(records, rec)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return records, nil
}

// WriteJSONL encodes records one JSON object per line.
func WriteJSONL[T any](w io.Writer, records []T) error {
	enc := json.NewEncoder(w)
	for i, rec := range records {
		if err := enc.Encode(rec); err != nil {
			return fmt.Errorf("failed to encode record %d: %w", i, err)
		}
	}
	return nil
}

// ReadJSONLFile reads a whole JSONL file into memory.
func ReadJSONLFile[T any](path string) ([]T, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ReadJSONL[T](f)
}

// WriteJSONLFile writes records to path, replacing any existing file.
func WriteJSONLFile[T any](path string, records []T) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return WriteJSONL(f, records)
}

// Map applies fn to every record in order, dropping records for which
// fn reports an error along with how many were dropped.
func Map[T, U any](records []T, fn func(T) (U, error)) (mapped []U, dropped int) {
	mapped = make([]U, 0, len(records))
	for _, rec := range records {
		out, err := fn(rec)
		if err != nil {
			dropped++
			continue
		}
		mapped = append(mapped, out)
	}
	return mapped, dropped
}

// Split shuffles records with the given seed and holds out testSize of
// them as the test split. testSize larger than the dataset is an error.
func Split[T any](records []T, testSize int, seed int64) (train, test []T, err error) {
	if testSize < 0 || testSize > len(records) {
		return nil, nil, fmt.Errorf("test size %d out of range for %d records", testSize, len(records))
	}

	shuffled := make([]T, len(records))
	copy(shuffled, records)
	rng := rand.New(rand.NewSource(seed))
	rng.Shuffle(len(shuffled), func(i, j int) {
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	})

	cut := len(shuffled) - testSize
	return shuffled[:cut], shuffled[cut:], nil
}
