package dataset

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractFiltersRawOutput(t *testing.T) {
	raw := strings.Join([]string{
		"Here are your problems, as requested:",
		"```json",
		`{"question": "A car accelerates at 3.2 m/s2 for 5 seconds. What is its final velocity?", "solutions": ["16 m/s", "16.0 m/s"]}`,
		`{"question": "", "solutions": ["nothing"]}`,
		`{not even json`,
		`{"question": "A 2 kg object is lifted 10 meters. What is its potential energy?", "solutions": ["196 J", "196J"], "difficulty": "easy"}`,
		"```",
		"Let me know if you need more!",
	}, "\n")

	records, err := Extract(strings.NewReader(raw))
	require.NoError(t, err)
	require.Len(t, records, 2)

	assert.Equal(t, "A car accelerates at 3.2 m/s2 for 5 seconds. What is its final velocity?", records[0].Question)
	assert.Equal(t, []string{"16 m/s", "16.0 m/s"}, records[0].Solutions)
	// Stray fields are projected away by the record type
	assert.Equal(t, []string{"196 J", "196J"}, records[1].Solutions)
}

func TestCleanFences(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{"json fence", "```json\n{\"a\":1}\n```", `{"a":1}`},
		{"bare fence", "```\n{\"a\":1}\n```", `{"a":1}`},
		{"no fence", `{"a":1}`, `{"a":1}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CleanFences(tt.raw))
		})
	}
}

func TestSplitHoldsOutExactCount(t *testing.T) {
	records := make([]QARecord, 1000)
	for i := range records {
		records[i] = QARecord{Question: string(rune('a' + i%26)), Solutions: []string{"x"}}
	}

	train, test, err := Split(records, 204, 42)
	require.NoError(t, err)
	assert.Len(t, train, 796)
	assert.Len(t, test, 204)

	// Same seed reproduces the same split
	train2, test2, err := Split(records, 204, 42)
	require.NoError(t, err)
	assert.Equal(t, train, train2)
	assert.Equal(t, test, test2)
}

func TestSplitRejectsOversizedHoldout(t *testing.T) {
	_, _, err := Split([]QARecord{{Question: "q"}}, 5, 1)
	assert.Error(t, err)
}

func TestReadWriteJSONLRoundTrip(t *testing.T) {
	records := []QARecord{
		{Question: "q1", Solutions: []string{"120 m", "120 meters"}},
		{Question: "q2", Solutions: []string{"80 m"}},
	}

	var buf strings.Builder
	require.NoError(t, WriteJSONL(&buf, records))

	got, err := ReadJSONL[QARecord](strings.NewReader(buf.String()))
	require.NoError(t, err)
	assert.Equal(t, records, got)
}

func TestMapDropsFailedRecords(t *testing.T) {
	records := []PersonaRecord{
		{Question: "q", Reasoning: "r", Answer: "a"},
		{Question: "q2"},
	}

	mapped, dropped := Map(records, func(p PersonaRecord) (string, error) {
		if p.Answer == "" {
			return "", assert.AnError
		}
		return p.Answer, nil
	})

	assert.Equal(t, []string{"a"}, mapped)
	assert.Equal(t, 1, dropped)
}
