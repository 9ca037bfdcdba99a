package checksum

import (
	"crypto/sha256"
	"fmt"
	"strings"

	"municipal-updates/internal/scraper"
)

type Generator struct{}

func NewGenerator() *Generator {
	return &Generator{}
}

// GenerateRecordHash считает отпечаток записи для сравнения выгрузок между прогонами.
// Формула: SHA256(institution|label|url|title|content|date)
// У ВиК url совпадает с адресом листинга, поэтому заголовок и текст входят в хеш.
func (g *Generator) GenerateRecordHash(rec scraper.UpdateRecord) string {
	content := strings.Join([]string{
		rec.Institution,
		rec.Label,
		rec.URL,
		rec.Title,
		rec.Content,
		rec.Date.String(),
	}, "|")

	hash := sha256.Sum256([]byte(content))
	return fmt.Sprintf("%x", hash)
}
