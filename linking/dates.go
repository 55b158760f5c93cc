package linking

import (
	"strings"
	"time"
)

// publishDateLayouts допустимые форматы даты публикации в выгрузках
var publishDateLayouts = []string{
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
	"2006/01/02",
	"2006.01.02",
	"2006年01月02日",
	"2006年1月2日",
	time.RFC3339,
}

// ParsePublishDate разбирает дату публикации. Отсутствующая или неразборчивая
// дата не ошибка: запись сортируется в конец, ok == false.
func ParsePublishDate(raw string) (time.Time, bool) {
	s := strings.TrimSpace(raw)
	if s == "" || s == "-" || strings.EqualFold(s, "nan") {
		return time.Time{}, false
	}
	for _, layout := range publishDateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
