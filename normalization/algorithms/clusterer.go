package algorithms

import (
	"sort"
	"unicode/utf8"
)

// ClusterOptions параметры кластеризации канонических ключей одного клиента
type ClusterOptions struct {
	// SimilarityThreshold минимальная схожесть для объединения в кластер
	SimilarityThreshold float64
	// PrefixLength длина префикса корзины в рунах; укорачивается до самого
	// короткого непустого ключа
	PrefixLength int
	// MaxBucketSize при превышении корзина не кластеризуется:
	// каждый ключ становится одиночным кластером
	MaxBucketSize int
	// MergePasses число дополнительных проходов слияния по представителям
	MergePasses int
	// CacheSize лимит кэша схожести на один вызов кластеризации
	CacheSize int
}

// DefaultClusterOptions параметры по умолчанию
func DefaultClusterOptions() ClusterOptions {
	return ClusterOptions{
		SimilarityThreshold: 0.88,
		PrefixLength:        8,
		MaxBucketSize:       80,
		MergePasses:         2,
		CacheSize:           DefaultCacheSize,
	}
}

// keyEntry уникальный ключ с позицией первого вхождения
type keyEntry struct {
	key        string
	runeLen    int
	firstIndex int
}

// cluster кластер внутри корзины; representative — самый длинный участник
type cluster struct {
	representative keyEntry
	members        []keyEntry
}

// ClusterKeys кластеризует канонические ключи одного клиента и возвращает
// отображение ключ -> ключ-представитель кластера.
//
// Алгоритм приближенный, с ограниченной стоимостью:
//   - сравниваются только ключи с общим префиксом (разные префиксы никогда
//     не сливаются, даже для настоящих дублей);
//   - корзина крупнее MaxBucketSize распадается на одиночные кластеры;
//   - внутри корзины жадное сопоставление с представителями в порядке
//     убывания длины, затем MergePasses проходов слияния представителей.
//
// Результат детерминирован при фиксированном порядке входа: сортировки
// стабильны, равные длины упорядочены по первому вхождению.
func ClusterKeys(keys []string, opts ClusterOptions) map[string]string {
	assigned := make(map[string]string, len(keys))
	if len(keys) == 0 {
		return assigned
	}
	if opts.SimilarityThreshold <= 0 || opts.SimilarityThreshold > 1 {
		opts.SimilarityThreshold = 0.88
	}
	if opts.PrefixLength <= 0 {
		opts.PrefixLength = 8
	}
	if opts.MaxBucketSize <= 0 {
		opts.MaxBucketSize = 80
	}
	if opts.MergePasses < 0 {
		opts.MergePasses = 0
	}

	cache := NewSimilarityCache(opts.CacheSize)

	// Уникальные ключи в порядке первого вхождения: повторы одного значения
	// всегда попадают в один кластер и не раздувают сравнения
	unique := uniqueEntries(keys)

	prefixLen := effectivePrefixLength(unique, opts.PrefixLength)
	buckets := bucketByPrefix(unique, prefixLen)

	prefixes := make([]string, 0, len(buckets))
	for p := range buckets {
		prefixes = append(prefixes, p)
	}
	sort.Strings(prefixes)

	for _, p := range prefixes {
		entries := buckets[p]

		if len(entries) > opts.MaxBucketSize {
			// Защита от квадратичной стоимости на сверхчастых префиксах:
			// теряем полноту, не падаем
			for _, e := range entries {
				assigned[e.key] = e.key
			}
			continue
		}

		clusters := greedyCluster(entries, opts.SimilarityThreshold, cache)
		for pass := 0; pass < opts.MergePasses; pass++ {
			merged := mergeClusters(clusters, opts.SimilarityThreshold, cache)
			if len(merged) == len(clusters) {
				break
			}
			clusters = merged
		}

		for _, cl := range clusters {
			for _, m := range cl.members {
				assigned[m.key] = cl.representative.key
			}
		}
	}

	return assigned
}

// uniqueEntries уникальные ключи с позицией первого вхождения
func uniqueEntries(keys []string) []keyEntry {
	seen := make(map[string]bool, len(keys))
	entries := make([]keyEntry, 0, len(keys))
	for i, k := range keys {
		if seen[k] {
			continue
		}
		seen[k] = true
		entries = append(entries, keyEntry{
			key:        k,
			runeLen:    utf8.RuneCountInString(k),
			firstIndex: i,
		})
	}
	return entries
}

// effectivePrefixLength длина префикса корзины: не длиннее самого короткого
// непустого ключа (пустые ключи образуют собственную корзину)
func effectivePrefixLength(entries []keyEntry, prefixLength int) int {
	shortest := prefixLength
	for _, e := range entries {
		if e.runeLen > 0 && e.runeLen < shortest {
			shortest = e.runeLen
		}
	}
	if shortest < 1 {
		shortest = 1
	}
	return shortest
}

// bucketByPrefix раскладывает ключи по корзинам фиксированного префикса
func bucketByPrefix(entries []keyEntry, prefixLen int) map[string][]keyEntry {
	buckets := make(map[string][]keyEntry)
	for _, e := range entries {
		runes := []rune(e.key)
		prefix := e.key
		if len(runes) > prefixLen {
			prefix = string(runes[:prefixLen])
		}
		buckets[prefix] = append(buckets[prefix], e)
	}
	return buckets
}

// greedyCluster жадная кластеризация корзины: ключи обрабатываются от
// длинных к коротким (длинные названия информативнее как представители),
// каждый ключ присоединяется к первому кластеру с подходящим представителем
func greedyCluster(entries []keyEntry, threshold float64, cache *SimilarityCache) []cluster {
	ordered := make([]keyEntry, len(entries))
	copy(ordered, entries)
	sort.SliceStable(ordered, func(i, j int) bool {
		if ordered[i].runeLen != ordered[j].runeLen {
			return ordered[i].runeLen > ordered[j].runeLen
		}
		return ordered[i].firstIndex < ordered[j].firstIndex
	})

	var clusters []cluster
	for _, e := range ordered {
		joined := false
		for ci := range clusters {
			if cache.Similarity(e.key, clusters[ci].representative.key) >= threshold {
				clusters[ci].members = append(clusters[ci].members, e)
				joined = true
				break
			}
		}
		if !joined {
			clusters = append(clusters, cluster{
				representative: e,
				members:        []keyEntry{e},
			})
		}
	}
	return clusters
}

// mergeClusters один проход слияния: кластеры, чьи представители проходят
// порог, объединяются. Ловит пары, которые жадный порядок оставил врозь.
func mergeClusters(clusters []cluster, threshold float64, cache *SimilarityCache) []cluster {
	merged := make([]cluster, 0, len(clusters))
	absorbed := make([]bool, len(clusters))

	for i := range clusters {
		if absorbed[i] {
			continue
		}
		current := clusters[i]
		for j := i + 1; j < len(clusters); j++ {
			if absorbed[j] {
				continue
			}
			if cache.Similarity(current.representative.key, clusters[j].representative.key) >= threshold {
				current.members = append(current.members, clusters[j].members...)
				current.representative = electRepresentative(current.members)
				absorbed[j] = true
			}
		}
		merged = append(merged, current)
	}
	return merged
}

// electRepresentative выбирает представителя кластера: самый длинный ключ,
// при равной длине — более раннее первое вхождение
func electRepresentative(members []keyEntry) keyEntry {
	best := members[0]
	for _, m := range members[1:] {
		if m.runeLen > best.runeLen ||
			(m.runeLen == best.runeLen && m.firstIndex < best.firstIndex) {
			best = m
		}
	}
	return best
}
