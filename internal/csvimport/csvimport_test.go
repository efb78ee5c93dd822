package csvimport

import (
	"fmt"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mark struct {
	Name  string
	Score int
}

func buildMark(fields map[string]string) (mark, error) {
	if fields["name"] == "" {
		return mark{}, fmt.Errorf("name is required")
	}
	score, err := strconv.Atoi(fields["score"])
	if err != nil || score < 0 || score > 100 {
		return mark{}, fmt.Errorf("score must be 0-100, got %q", fields["score"])
	}
	return mark{Name: fields["name"], Score: score}, nil
}

func TestParsePartitionsRows(t *testing.T) {
	lines := []string{"Asha,90", "Ravi,142", "Maya,70"}
	res, err := Parse("name,score", lines, []string{"name", "score"}, buildMark)
	require.NoError(t, err)

	require.Len(t, res.Valid, 2)
	assert.Equal(t, mark{"Asha", 90}, res.Valid[0].Value)
	assert.Equal(t, 2, res.Valid[0].Line)
	assert.Equal(t, 4, res.Valid[1].Line)

	require.Len(t, res.Invalid, 1)
	assert.Equal(t, 3, res.Invalid[0].Line)
	assert.Contains(t, res.Invalid[0].Reason, "score")
}

func TestParseMissingHeaderIsFileLevel(t *testing.T) {
	res, err := Parse("name", []string{"Asha,90"}, []string{"name", "score"}, buildMark)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `"score"`)
	assert.Empty(t, res.Valid)
	assert.Empty(t, res.Invalid)
}

func TestParseToleratesExtraAndMissingCells(t *testing.T) {
	// short row: missing cells read as empty, caught by the builder
	res, err := Parse("name,score", []string{"Asha"}, []string{"name", "score"}, buildMark)
	require.NoError(t, err)
	assert.Empty(t, res.Valid)
	require.Len(t, res.Invalid, 1)

	// extra columns beyond the header are ignored
	res, err = Parse("name,score", []string{"Asha,90,extra"}, []string{"name", "score"}, buildMark)
	require.NoError(t, err)
	require.Len(t, res.Valid, 1)
	assert.Equal(t, 90, res.Valid[0].Value.Score)
}

func TestParseHeaderWhitespaceAndCRLF(t *testing.T) {
	res, err := Parse("name, score\r", []string{"Asha,90\r"}, []string{"name", "score"}, buildMark)
	require.NoError(t, err)
	require.Len(t, res.Valid, 1)
	assert.Equal(t, mark{"Asha", 90}, res.Valid[0].Value)
}

func TestSplitLines(t *testing.T) {
	header, lines := SplitLines("a,b\r\n1,2\n3,4\n")
	assert.Equal(t, "a,b", header)
	assert.Equal(t, []string{"1,2", "3,4", ""}, lines)

	header, lines = SplitLines("")
	assert.Equal(t, "", header)
	assert.Empty(t, lines)
}
