package report

import (
	"bytes"
	"strconv"
	"testing"

	"farmdash/internal/farm"
	"farmdash/internal/table"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in   string
		want Format
	}{
		{"csv", FormatCSV},
		{"XLSX", FormatXLSX},
		{"excel", FormatXLSX},
		{"pdf", FormatPDF},
		{"md", FormatMarkdown},
		{"html", FormatHTML},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseFormat(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := ParseFormat("docx")
	assert.Error(t, err)
	assert.Equal(t, "md", FormatMarkdown.Ext())
	assert.Equal(t, "application/pdf", FormatPDF.ContentType())
}

func TestWriteXLSX(t *testing.T) {
	s := schema(t, farm.FeedUsage)
	r := feed("1", "2024-01-01", "Starter", "3.5")
	r.Values["Notes"] = "wet"
	rep := Build(s, []table.Record{r, feed("2", "2024-01-02", "Layer", "4")}, Range{})

	var buf bytes.Buffer
	require.NoError(t, rep.WriteXLSX(&buf))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{"Feed Usage", "Metrics"}, f.GetSheetList())
	rows, err := f.GetRows("Feed Usage")
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, []string{"Feed Type", "Quantity (kg)", "Time of Feeding", "Date", "Notes"}, rows[0])
	assert.Equal(t, []string{"Starter Feed", "3.5", "08:00", "2024-01-01", "wet"}, rows[1])
	assert.Equal(t, "Layer Feed", rows[2][0])

	metrics, err := f.GetRows("Metrics")
	require.NoError(t, err)
	assert.Equal(t, []string{"Metric", "Value"}, metrics[0])
	assert.Equal(t, []string{"Entries", "2"}, metrics[1])
}

func TestWritePDF(t *testing.T) {
	s := schema(t, farm.FeedUsage)

	t.Run("empty", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, Build(s, nil, Range{}).WritePDF(&buf))
		assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("%PDF-")))
	})

	t.Run("spans pages", func(t *testing.T) {
		var records []table.Record
		for i := 0; i < 80; i++ {
			r := feed(strconv.Itoa(i), "2024-01-01", "Grower", "2")
			r.Values["Notes"] = "a note long enough that it has to be cut to fit inside its column on the page"
			records = append(records, r)
		}
		var buf bytes.Buffer
		require.NoError(t, Build(s, records, Range{}).WritePDF(&buf))
		assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("%PDF-")))
		b := buf.Bytes()
		pages := bytes.Count(b, []byte("/Type /Page")) - bytes.Count(b, []byte("/Type /Pages"))
		assert.Greater(t, pages, 1)
	})
}

func TestWrite_DispatchesByFormat(t *testing.T) {
	rep := Build(schema(t, farm.FeedUsage), []table.Record{feed("1", "2024-01-01", "Starter", "3")}, Range{})

	var csvBuf, mdBuf bytes.Buffer
	require.NoError(t, rep.Write(&csvBuf, FormatCSV))
	require.NoError(t, rep.Write(&mdBuf, FormatMarkdown))
	assert.Contains(t, csvBuf.String(), "Starter Feed,3")
	assert.Contains(t, mdBuf.String(), "# Feed Usage report")
	assert.Error(t, rep.Write(&bytes.Buffer{}, Format("docx")))
}
