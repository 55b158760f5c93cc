package normalization

import (
	"regexp"
	"strings"

	"golang.org/x/text/width"
)

// projectCodePattern ведущий код проекта: год + буквы + цифры + разделитель,
// например «2024-ZB-0117：», «(2023)CG-045 ». Такие коды уникальны для каждой
// публикации и мешают сравнению названий одного проекта.
var projectCodePattern = regexp.MustCompile(`^[（(\[【]?(?:19|20)\d{2}[）)\]】]?[-_年]?[A-Za-z]{1,8}[-_]?\d{1,8}(?:号)?[\s\-_—:：、.]+`)

// CanonicalKey строит канонический ключ сравнения для кластеризации:
// полноширинные скобки и знаки приводятся к узкой форме, ведущий код проекта
// и ведущее точное имя клиента отбрасываются, пробелы схлопываются.
// Пустой результат допустим: записи с пустым ключом кластеризуются между
// собой по точному совпадению.
func CanonicalKey(coreName, customer string) string {
	s := strings.TrimSpace(coreName)
	if s == "" {
		return ""
	}

	// Полноширинные формы （）：１２３ -> узкие; CJK-иероглифы не затрагиваются
	s = width.Narrow.String(s)

	s = projectCodePattern.ReplaceAllString(s, "")

	if customer != "" {
		c := width.Narrow.String(strings.TrimSpace(customer))
		s = strings.TrimSpace(strings.TrimPrefix(s, c))
	}

	s = strings.Join(strings.Fields(s), " ")
	return s
}
