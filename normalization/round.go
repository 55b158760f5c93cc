package normalization

import (
	"regexp"
	"strconv"
	"strings"
)

// cnNumbers китайские числительные -> арабские
var cnNumbers = map[string]int{
	"一": 1, "二": 2, "三": 3, "四": 4, "五": 5,
	"六": 6, "七": 7, "八": 8, "九": 9, "十": 10,
	"百": 100, "十一": 11, "十二": 12, "十三": 13, "十四": 14,
	"十五": 15, "十六": 16, "十七": 17, "十八": 18, "十九": 19,
	"二十": 20, "三十": 30, "四十": 40, "五十": 50,
}

// tenderRoundPatterns варианты записи раунда/партии в названии, по приоритету
var tenderRoundPatterns = []*regexp.Regexp{
	// （第二次）、(第一次)、（第2次）
	regexp.MustCompile(`[（(]第?([一二三四五六七八九十\d]+)[次批期][）)]`),
	// 第2次、第1批、第二批
	regexp.MustCompile(`第([一二三四五六七八九十\d]+)[次批期]`),
	// 二次、一次、二批、一批
	regexp.MustCompile(`([一二三四五六七八九十]+)[次批期]`),
}

// cnToInt переводит китайское или арабское числительное в int.
// Неразборчивый вход дает 1.
func cnToInt(s string) int {
	s = strings.TrimSpace(s)
	if s == "" {
		return 1
	}
	if n, err := strconv.Atoi(s); err == nil {
		if n < 1 {
			return 1
		}
		return n
	}
	if n, ok := cnNumbers[s]; ok {
		return n
	}
	runes := []rune(s)
	if len(runes) == 2 {
		first, second := string(runes[0]), string(runes[1])
		if n, ok := cnNumbers[first]; ok && second == "十" {
			return n * 10 // 二十 -> 20
		}
		if n, ok := cnNumbers[second]; ok && first == "十" {
			return 10 + n // 十一 -> 11
		}
	}
	return 1
}

// ParseTenderRound извлекает из названия проекта номер раунда (第几次/第几批).
// Если раунд не указан или не разбирается — возвращает 1.
func ParseTenderRound(projectName string) int {
	s := strings.TrimSpace(projectName)
	if s == "" {
		return 1
	}
	for _, pat := range tenderRoundPatterns {
		if m := pat.FindStringSubmatch(s); m != nil {
			n := cnToInt(m[1])
			if n < 1 {
				return 1
			}
			return n
		}
	}
	return 1
}
