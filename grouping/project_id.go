package grouping

import (
	"crypto/md5"
	"encoding/hex"
	"regexp"
)

// projectIDHashLen длина хэш-суффикса project_id в hex-символах
const projectIDHashLen = 12

// customerSlugMaxLen максимальная длина слага клиента в рунах
const customerSlugMaxLen = 40

// customerSlugPattern все, кроме латиницы, цифр и CJK, заменяется на «_»
var customerSlugPattern = regexp.MustCompile(`[^a-zA-Z0-9\x{4e00}-\x{9fa5}]`)

// MakeProjectID строит стабильный project_id из клиента и ключа-представителя
// кластера. Чистая функция: одинаковая пара (customer, representative) дает
// одинаковый идентификатор между запусками и перезапусками процесса —
// идентичность проекта пересчитывается каждый запуск, но не «плывет».
// Формат: <слаг клиента>_<первые 12 hex md5 от "customer\nrepresentative">.
func MakeProjectID(customer, representative string) string {
	sum := md5.Sum([]byte(customer + "\n" + representative))
	h := hex.EncodeToString(sum[:])[:projectIDHashLen]
	return customerSlug(customer) + "_" + h
}

func customerSlug(customer string) string {
	slug := customerSlugPattern.ReplaceAllString(customer, "_")
	runes := []rune(slug)
	if len(runes) > customerSlugMaxLen {
		return string(runes[:customerSlugMaxLen])
	}
	return slug
}
