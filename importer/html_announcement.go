package importer

import (
	"fmt"
	"io"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Announcement объявление, извлеченное из сохраненной HTML-страницы.
// Альтернативный источник данных для клиентов, по которым нет выгрузки
// 天眼查: сохраненные страницы деталей объявлений с порталов закупок.
type Announcement struct {
	Title       string
	PublishDate string
	Awardee     string
	AmountRaw   string
}

// Селекторы заголовка и даты на типовых страницах порталов закупок,
// в порядке приоритета
var (
	titleSelectors = []string{"h1", ".article-title", ".detail-title", ".title", "title"}
	dateSelectors  = []string{"time", ".publish-date", ".date", ".info-date"}
)

var (
	htmlDatePattern    = regexp.MustCompile(`\d{4}[-/.年]\d{1,2}[-/.月]\d{1,2}日?`)
	htmlAwardeePattern = regexp.MustCompile(`(?:中标(?:单位|人|供应商)|成交(?:单位|人|供应商))[:：]?\s*([^，。,;；\s]{2,60})`)
	htmlAmountPattern  = regexp.MustCompile(`(?:中标金额|成交金额|中标价|成交价)[:：]?\s*([\d.,]+\s*万?元?)`)
)

// ParseAnnouncementHTML извлекает объявление из HTML-страницы. Отсутствие
// отдельных полей не ошибка — возвращается то, что удалось найти; ошибкой
// считается только отсутствие заголовка.
func ParseAnnouncementHTML(r io.Reader) (*Announcement, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("не удалось разобрать HTML: %w", err)
	}

	a := &Announcement{}

	for _, sel := range titleSelectors {
		if text := strings.TrimSpace(doc.Find(sel).First().Text()); text != "" {
			a.Title = collapseSpaces(text)
			break
		}
	}
	if a.Title == "" {
		return nil, fmt.Errorf("на странице не найден заголовок объявления")
	}

	for _, sel := range dateSelectors {
		if text := strings.TrimSpace(doc.Find(sel).First().Text()); text != "" {
			if m := htmlDatePattern.FindString(text); m != "" {
				a.PublishDate = normalizeHTMLDate(m)
				break
			}
		}
	}

	body := doc.Find("body").Text()
	if a.PublishDate == "" {
		if m := htmlDatePattern.FindString(body); m != "" {
			a.PublishDate = normalizeHTMLDate(m)
		}
	}
	if m := htmlAwardeePattern.FindStringSubmatch(body); m != nil {
		a.Awardee = strings.TrimSpace(m[1])
	}
	if m := htmlAmountPattern.FindStringSubmatch(body); m != nil {
		a.AmountRaw = strings.TrimSpace(m[1])
	}

	return a, nil
}

// normalizeHTMLDate приводит 2024年5月7日 к 2024-05-07; остальные формы
// отдаются как есть — слой связывания терпим к форматам дат
func normalizeHTMLDate(s string) string {
	s = strings.TrimSuffix(s, "日")
	s = strings.ReplaceAll(s, "年", "-")
	s = strings.ReplaceAll(s, "月", "-")
	parts := strings.FieldsFunc(s, func(r rune) bool { return r == '-' || r == '/' || r == '.' })
	if len(parts) == 3 {
		return fmt.Sprintf("%s-%s-%s", parts[0], pad2(parts[1]), pad2(parts[2]))
	}
	return s
}

func pad2(s string) string {
	if len(s) == 1 {
		return "0" + s
	}
	return s
}

func collapseSpaces(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
