package normalization

import (
	"math"
	"regexp"
	"strconv"
	"strings"
)

// Единицы измерения суммы, распознаваемые в исходных данных
const (
	AmountUnitWan     = "万元"
	AmountUnitYuan    = "元"
	AmountUnitUnknown = "未知"
)

// Amount результат разбора суммы контракта, нормализованной к 万元 (10 тыс. юаней)
type Amount struct {
	WanYuan float64 // значение в 万元; валидно только при Missing == false
	Unit    string  // обнаруженная единица: 万元 / 元 / 未知
	Missing bool    // пусто, «-» или неразборчиво
}

var (
	amountWanPattern  = regexp.MustCompile(`([\d.,]+)\s*万`)
	amountYuanPattern = regexp.MustCompile(`([\d.,]+)\s*元`)
	amountBarePattern = regexp.MustCompile(`^([\d.,]+)$`)
)

// ParseAmount разбирает строку суммы контракта и приводит ее к 万元.
// Неразборчивый вход не является ошибкой: возвращается Missing == true.
func ParseAmount(raw string) Amount {
	missing := Amount{Unit: AmountUnitUnknown, Missing: true}

	s := strings.TrimSpace(raw)
	if s == "" || s == "-" || strings.EqualFold(s, "nan") {
		return missing
	}

	// 万元: 94.02万元、20万
	if m := amountWanPattern.FindStringSubmatch(s); m != nil {
		val, err := parseAmountNumber(m[1])
		if err != nil {
			return Amount{Unit: AmountUnitWan, Missing: true}
		}
		return Amount{WanYuan: round4(val), Unit: AmountUnitWan}
	}

	// 元: 1000元、1,000元 — переводим в 万元
	if m := amountYuanPattern.FindStringSubmatch(s); m != nil {
		val, err := parseAmountNumber(m[1])
		if err != nil {
			return Amount{Unit: AmountUnitYuan, Missing: true}
		}
		return Amount{WanYuan: round4(val / 10000.0), Unit: AmountUnitYuan}
	}

	// Голое число без единицы: < 10000 скорее 万元, иначе скорее 元
	if m := amountBarePattern.FindStringSubmatch(s); m != nil {
		val, err := parseAmountNumber(m[1])
		if err != nil || val <= 0 {
			return missing
		}
		if val < 10000 {
			return Amount{WanYuan: round4(val), Unit: AmountUnitWan}
		}
		return Amount{WanYuan: round4(val / 10000.0), Unit: AmountUnitYuan}
	}

	return missing
}

func parseAmountNumber(s string) (float64, error) {
	return strconv.ParseFloat(strings.ReplaceAll(s, ",", ""), 64)
}

func round4(v float64) float64 {
	return math.Round(v*10000) / 10000
}
