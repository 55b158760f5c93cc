package algorithms

import "sync"

// DefaultCacheSize размер кэша схожести по умолчанию
const DefaultCacheSize = 100000

// SimilarityCache мемоизация TitleSimilarity по неупорядоченной паре строк.
// Кэш принадлежит одному проходу кластеризации и передается явно:
// параллельные разделы по клиентам не разделяют состояние и не конкурируют.
// При достижении лимита новые пары не кэшируются (ранние записи остаются).
type SimilarityCache struct {
	mu         sync.RWMutex
	entries    map[string]float64
	maxEntries int
}

// NewSimilarityCache создает кэш схожести с ограничением размера
func NewSimilarityCache(maxEntries int) *SimilarityCache {
	if maxEntries <= 0 {
		maxEntries = DefaultCacheSize
	}
	return &SimilarityCache{
		entries:    make(map[string]float64),
		maxEntries: maxEntries,
	}
}

// Similarity возвращает TitleSimilarity(a, b) с мемоизацией
func (c *SimilarityCache) Similarity(a, b string) float64 {
	key := pairKey(a, b)

	c.mu.RLock()
	if v, ok := c.entries[key]; ok {
		c.mu.RUnlock()
		return v
	}
	c.mu.RUnlock()

	v := TitleSimilarity(a, b)

	c.mu.Lock()
	if len(c.entries) < c.maxEntries {
		c.entries[key] = v
	}
	c.mu.Unlock()

	return v
}

// Size текущее число записей в кэше
func (c *SimilarityCache) Size() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// pairKey симметричный ключ кэша: порядок аргументов не влияет на результат
func pairKey(a, b string) string {
	if a > b {
		a, b = b, a
	}
	return a + "\x00" + b
}
