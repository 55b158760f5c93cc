package algorithms

import "strings"

const (
	// minLengthRatio порог отношения длин: короче половины — заведомо разные названия
	minLengthRatio = 0.5
	// containmentRatio минимальное отношение длин для срабатывания правила вложенности
	containmentRatio = 0.8
	// ContainmentScore фиксированная оценка для вложенных названий
	// (усеченный/расширенный вариант одного и того же названия)
	ContainmentScore = 0.9
)

// TitleSimilarity вычисляет схожесть двух канонических ключей в [0, 1].
// Контракт:
//   - пустой ключ -> 0;
//   - отношение длин (в рунах) < 0.5 -> 0, без полного сравнения;
//   - короткий ключ вложен в длинный при отношении длин >= 0.8 -> ровно 0.9;
//   - иначе LCS-коэффициент по рунам.
//
// Правила-отсечки ограничивают стоимость: полное выравнивание выполняется
// только для пар сопоставимой длины без вложенности.
func TitleSimilarity(a, b string) float64 {
	if a == "" || b == "" {
		return 0
	}

	ra, rb := []rune(a), []rune(b)
	if len(ra) > len(rb) {
		a, b = b, a
		ra, rb = rb, ra
	}

	ratio := float64(len(ra)) / float64(len(rb))
	if ratio < minLengthRatio {
		return 0
	}

	if ratio >= containmentRatio && strings.Contains(b, a) {
		return ContainmentScore
	}

	lcs := longestCommonSubsequence(ra, rb)
	return 2.0 * float64(lcs) / float64(len(ra)+len(rb))
}

// longestCommonSubsequence длина наибольшей общей подпоследовательности.
// Матрица DP хранится в двух строках: названия ограничены по длине,
// но пар внутри корзины много.
func longestCommonSubsequence(r1, r2 []rune) int {
	if len(r1) == 0 || len(r2) == 0 {
		return 0
	}

	prev := make([]int, len(r2)+1)
	curr := make([]int, len(r2)+1)

	for i := 1; i <= len(r1); i++ {
		for j := 1; j <= len(r2); j++ {
			if r1[i-1] == r2[j-1] {
				curr[j] = prev[j-1] + 1
			} else if prev[j] >= curr[j-1] {
				curr[j] = prev[j]
			} else {
				curr[j] = curr[j-1]
			}
		}
		prev, curr = curr, prev
	}

	return prev[len(r2)]
}
