package utils

import (
	"regexp"
	"strings"
)

// RedactMask заменяет значение секрета.
const RedactMask = "***"

// RedactQueryParams скрывает значения query параметров params в тексте.
//
// Ошибки net/http содержат полный URL запроса, поэтому перед логированием
// ключ, переданный в query (apiKey=...), нужно вырезать:
//
//	Get "https://host/x?apiKey=abc&q=1": EOF → Get "https://host/x?apiKey=***&q=1": EOF
//
// Имена параметров сравниваются без учёта регистра.
func RedactQueryParams(text string, params ...string) string {
	if text == "" || len(params) == 0 {
		return text
	}

	quoted := make([]string, len(params))
	for i, p := range params {
		quoted[i] = regexp.QuoteMeta(p)
	}
	re := regexp.MustCompile(`(?i)([?&](?:` + strings.Join(quoted, "|") + `)=)[^&"\s]*`)
	return re.ReplaceAllString(text, "${1}"+RedactMask)
}

// RedactValue заменяет все вхождения secret в тексте. Пустой secret игнорируется.
func RedactValue(text, secret string) string {
	if secret == "" {
		return text
	}
	return strings.ReplaceAll(text, secret, RedactMask)
}
