package papers

import (
	"regexp"
	"strings"
)

// Маркер строки со ссылкой на статью: markdown-буллет и открывающий bold.
const linePrefix = "*   **"

// Title и URL захватываются нежадно, как в исходном формате ответа агента.
// Якорь только в начале строки: хвост после ")" игнорируется.
var linePattern = regexp.MustCompile(`^\*   \*\*(.*?)\*\*: \[(.*?)\]\((.*?)\)`)

type Record struct {
	Title string
	Link  string
}

// Extract разбирает финальный текст агента в список статей.
// Строки, не подходящие под формат, молча отбрасываются.
func Extract(text string) []Record {
	records := make([]Record, 0)

	for _, line := range strings.Split(text, "\n") {
		if !strings.HasPrefix(line, linePrefix) {
			continue
		}

		m := linePattern.FindStringSubmatch(line)
		if m == nil {
			continue
		}

		title := strings.TrimSpace(m[1])
		// запись без заголовка в отчёт не попадает
		if title == "" {
			continue
		}

		records = append(records, Record{
			Title: title,
			Link:  strings.TrimSpace(m[3]),
		})
	}

	return records
}
