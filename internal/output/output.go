package output

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"municipal-updates/internal/checksum"
	"municipal-updates/internal/scraper"
)

const (
	FormatJSON     = "json"
	FormatCSV      = "csv"
	FormatMarkdown = "markdown"
)

func Formats() []string {
	return []string{FormatJSON, FormatCSV, FormatMarkdown}
}

type Row struct {
	Date         string `json:"date"`
	Municipality string `json:"municipality"`
	Institution  string `json:"institution"`
	Label        string `json:"label"`
	Title        string `json:"title"`
	Content      string `json:"content"`
	Link         string `json:"link"`
	URL          string `json:"url"`
	Fingerprint  string `json:"fingerprint"`
}

var header = []string{"Дата", "Институция", "Категория", "Заглавие", "Съдържание", "Връзка"}

func (r Row) cells() []string {
	return []string{r.Date, r.Institution, r.Label, r.Title, r.Content, r.Link}
}

// BuildRows готовит строки: новые сверху, при равных датах порядок обхода сохраняется
func BuildRows(table *scraper.UpdateTable) []Row {
	if table == nil {
		return nil
	}
	records := append([]scraper.UpdateRecord(nil), table.Records...)
	sort.SliceStable(records, func(i, j int) bool {
		return records[j].Date.Before(records[i].Date)
	})

	gen := checksum.NewGenerator()
	rows := make([]Row, 0, len(records))
	for _, rec := range records {
		rows = append(rows, Row{
			Date:         rec.Date.Time.Format(scraper.DateTimeLayout),
			Municipality: rec.Municipality,
			Institution:  rec.Institution,
			Label:        rec.Label,
			Title:        rec.Title,
			Content:      rec.Content,
			Link:         fmt.Sprintf("[Източник](%s)", rec.URL),
			URL:          rec.URL,
			Fingerprint:  gen.GenerateRecordHash(rec),
		})
	}
	return rows
}

func Write(w io.Writer, format string, table *scraper.UpdateTable) error {
	rows := BuildRows(table)
	switch format {
	case FormatJSON:
		return writeJSON(w, rows)
	case FormatCSV:
		return writeCSV(w, rows)
	case FormatMarkdown:
		return writeMarkdown(w, rows)
	default:
		return fmt.Errorf("unknown output format %q (known: %v)", format, Formats())
	}
}

// WriteFile пишет во временный файл и переименовывает, чтобы не оставить обрезанную выгрузку
func WriteFile(path, format string, table *scraper.UpdateTable) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create output dir: %w", err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), ".updates-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if err := Write(tmp, format, table); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("failed to move output into place: %w", err)
	}
	return nil
}

func writeJSON(w io.Writer, rows []Row) error {
	if rows == nil {
		rows = []Row{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(rows)
}

func writeCSV(w io.Writer, rows []Row) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(header); err != nil {
		return err
	}
	for _, r := range rows {
		if err := cw.Write(r.cells()); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

var mdEscaper = strings.NewReplacer("|", `\|`, "\r\n", "<br>", "\n", "<br>")

func writeMarkdown(w io.Writer, rows []Row) error {
	var b strings.Builder
	b.WriteString("| " + strings.Join(header, " | ") + " |\n")
	b.WriteString(strings.Repeat("|---", len(header)) + "|\n")
	for _, r := range rows {
		cells := r.cells()
		for i, c := range cells {
			cells[i] = mdEscaper.Replace(c)
		}
		b.WriteString("| " + strings.Join(cells, " | ") + " |\n")
	}
	_, err := io.WriteString(w, b.String())
	return err
}
