package output

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"municipal-updates/internal/scraper"
)

func ts(y int, m time.Month, d, h, mi int, clock bool) scraper.Timestamp {
	return scraper.Timestamp{Time: time.Date(y, m, d, h, mi, 0, 0, time.UTC), HasClock: clock}
}

func testTable() *scraper.UpdateTable {
	return &scraper.UpdateTable{Records: []scraper.UpdateRecord{
		{Institution: "ВиК", Label: "Новини", Title: "Стара", Date: ts(2023, 3, 1, 0, 0, false), Content: "ред 1\nред 2", URL: "http://vik/"},
		{Institution: "Топлофикация", Label: "Новини", Title: "Нова", Date: ts(2023, 3, 14, 10, 15, true), URL: "https://toplo/1"},
		{Institution: "ВиК", Label: "Ремонтни дейности", Title: "Същия ден", Date: ts(2023, 3, 14, 10, 15, true), Content: "a | b", URL: "http://vik/"},
	}}
}

func TestBuildRowsSortsNewestFirst(t *testing.T) {
	rows := BuildRows(testTable())
	require.Len(t, rows, 3)

	assert.Equal(t, "Нова", rows[0].Title)
	assert.Equal(t, "Същия ден", rows[1].Title, "ties keep traversal order")
	assert.Equal(t, "Стара", rows[2].Title)

	assert.Equal(t, "2023-03-14 10:15:00", rows[0].Date)
	assert.Equal(t, "2023-03-01 00:00:00", rows[2].Date)
	assert.Equal(t, "[Източник](https://toplo/1)", rows[0].Link)
	assert.Len(t, rows[0].Fingerprint, 64)
	assert.NotEqual(t, rows[1].Fingerprint, rows[2].Fingerprint)
}

func TestBuildRowsNil(t *testing.T) {
	assert.Empty(t, BuildRows(nil))
}

func TestWriteJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, FormatJSON, testTable()))

	var rows []Row
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rows))
	require.Len(t, rows, 3)
	assert.Equal(t, "Топлофикация", rows[0].Institution)

	buf.Reset()
	require.NoError(t, Write(&buf, FormatJSON, &scraper.UpdateTable{}))
	assert.Equal(t, "[]\n", buf.String())
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, FormatCSV, testTable()))

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 4)
	assert.Equal(t, header, records[0])
	assert.Equal(t, "ред 1\nред 2", records[3][4], "multi-line content survives quoting")
}

func TestWriteMarkdown(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, FormatMarkdown, testTable()))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 5)
	assert.True(t, strings.HasPrefix(lines[0], "| Дата |"))
	assert.Contains(t, lines[3], `a \| b`)
	assert.Contains(t, lines[4], "ред 1<br>ред 2")
}

func TestWriteUnknownFormat(t *testing.T) {
	assert.Error(t, Write(&bytes.Buffer{}, "xml", testTable()))
}

func TestWriteFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "updates.csv")
	require.NoError(t, WriteFile(path, FormatCSV, testTable()))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), "Дата,"))

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temp file cleaned up")
}
