package normalization

import (
	"regexp"
	"strings"
)

// coreNameMaxLen максимальная длина ядра названия (в рунах)
const coreNameMaxLen = 200

// roundPatterns выражения раундов/партий, удаляемые из ядра названия
// (сама бизнес-часть названия сохраняется)
var roundPatterns = []*regexp.Regexp{
	// （第二次）、(第一次)、（第2次） — скобочная форма удаляется целиком
	regexp.MustCompile(`[（(]第?[一二三四五六七八九十百\d]+[次批期][）)]`),
	// 一次、二次
	regexp.MustCompile(`[一二三四五六七八九十百]+次`),
	// 第1次、第二批
	regexp.MustCompile(`第[一二三四五六七八九十\d]+[次批期]`),
	// 一批、二期
	regexp.MustCompile(`[一二三四五六七八九十\d]+[批期]`),
	regexp.MustCompile(`（[一二三四五六七八九十\d]+[批期]）`),
	regexp.MustCompile(`\([一二三四五六七八九十\d]+[批期]\)`),
}

// suffixPatterns удаляемые суффиксы (тип объявления)
var suffixPatterns = []*regexp.Regexp{
	regexp.MustCompile(`招标公告$`),
	regexp.MustCompile(`中标公告$`),
	regexp.MustCompile(`中标候选人公示$`),
	regexp.MustCompile(`成交结果公告?$`),
	regexp.MustCompile(`成交公告$`),
	regexp.MustCompile(`采购公告$`),
	regexp.MustCompile(`竞争性谈判.*$`),
	regexp.MustCompile(`竞争性磋商.*$`),
	regexp.MustCompile(`询价.*$`),
	regexp.MustCompile(`结果信息公开$`),
	regexp.MustCompile(`结果公示$`),
	regexp.MustCompile(`入围结果公示$`),
}

// noisePatterns даты и прочий шум внутри названия
var noisePatterns = []*regexp.Regexp{
	regexp.MustCompile(`\d{4}[-/.]\d{1,2}[-/.]\d{1,2}`), // 2024-05-07
	regexp.MustCompile(`\d{4}\.\d{1,2}\.\d{1,2}`),
}

var coreWhitespacePattern = regexp.MustCompile(`[\s|]+`)

// ParseProjectNameCore извлекает ядро названия проекта: убирает 一次/二次,
// суффиксы 招标/中标 и даты, нормализует пробелы. Пустой или нетекстовый
// вход дает пустую строку, ошибок не бывает.
func ParseProjectNameCore(projectName string) string {
	s := strings.TrimSpace(projectName)
	if s == "" {
		return ""
	}

	for _, pat := range roundPatterns {
		s = pat.ReplaceAllString(s, "")
	}
	for _, pat := range suffixPatterns {
		s = pat.ReplaceAllString(s, "")
	}
	for _, pat := range noisePatterns {
		s = pat.ReplaceAllString(s, "")
	}

	s = coreWhitespacePattern.ReplaceAllString(s, " ")
	s = strings.Trim(s, " -_|")

	runes := []rune(s)
	if len(runes) > coreNameMaxLen {
		return string(runes[:coreNameMaxLen])
	}
	return s
}
