package utils

import "strings"

// CleanJsonBlock удаляет markdown-обёртку вокруг JSON.
//
// Модель иногда присылает аргументы tool call или structured output
// обёрнутыми в ```json ... ```.
//
//	```json {"a": 1} ``` → {"a": 1}
//	``` {"a": 1} ```     → {"a": 1}
func CleanJsonBlock(s string) string {
	s = strings.TrimSpace(s)

	for _, prefix := range []string{"```json", "```JSON", "```Json", "```"} {
		if strings.HasPrefix(s, prefix) {
			s = strings.TrimPrefix(s, prefix)
			break
		}
	}
	s = strings.TrimSuffix(s, "```")

	return strings.TrimSpace(s)
}

// ExtractJSON возвращает первый сбалансированный JSON-объект из текста.
//
// Скобки внутри строковых литералов не считаются. Если объект не закрыт,
// возвращается хвост начиная с '{'. Пустая строка — объекта нет.
// Не валидирует JSON.
func ExtractJSON(s string) string {
	start := strings.Index(s, "{")
	if start == -1 {
		return ""
	}

	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(s); i++ {
		c := s[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return s[start : i+1]
			}
		}
	}

	return s[start:]
}
