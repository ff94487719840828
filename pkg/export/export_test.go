package export

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCSVExporterRender(t *testing.T) {
	out, err := NewCSVExporter().Render(Dataset{
		Headers: []string{"Day", "Slot", "Subject"},
		Rows:    [][]string{{"MONDAY", "1", "Algebra, Linear"}},
	})
	require.NoError(t, err)
	assert.Equal(t, "Day,Slot,Subject\nMONDAY,1,\"Algebra, Linear\"\n", string(out))
}

func TestCSVExporterOptions(t *testing.T) {
	out, err := NewCSVExporter(WithBOM(), WithDelimiter(';')).Render(Dataset{
		Headers: []string{"Professor", "Room"},
		Rows:    [][]string{{"Dr. Núñez", "A101"}},
	})
	require.NoError(t, err)
	require.True(t, bytes.HasPrefix(out, utf8BOM))
	assert.Equal(t, "Professor;Room\nDr. Núñez;A101\n", string(out[len(utf8BOM):]))
}

func TestCSVExporterRejectsRaggedRows(t *testing.T) {
	_, err := NewCSVExporter().Render(Dataset{Headers: []string{"A", "B"}, Rows: [][]string{{"1"}}})
	assert.Error(t, err)

	_, err = NewCSVExporter().Render(Dataset{})
	assert.Error(t, err)
}

func TestPDFExporterRender(t *testing.T) {
	data := Dataset{
		Headers: []string{"Time", "MONDAY", "TUESDAY"},
		Rows: [][]string{
			{"08:00-09:30", "Algebra\nDr One\nA101", ""},
			{"09:45-11:15", "", "Physics (G1)\nDr Two\nLab 2\n---\nChemistry (G2)\nDr Three\nLab 3"},
		},
	}
	out, err := NewPDFExporter().Render(data, "Y1 / G1")
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF")))

	_, err = NewPDFExporter().Render(Dataset{}, "")
	assert.Error(t, err)
}
