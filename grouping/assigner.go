package grouping

import (
	"sync"

	"tenderlink/normalization"
	"tenderlink/normalization/algorithms"
)

// defaultMaxParallel максимум одновременно обрабатываемых клиентов
const defaultMaxParallel = 8

// Item входная запись для назначения идентичности проекта
type Item struct {
	Customer string // клиент, для которого выгружены объявления
	CoreName string // project_name_core из слоя очистки
	RawTitle string // исходное название, для разбора раунда
}

// Assignment результат назначения идентичности для одной записи
type Assignment struct {
	ProjectID      string // стабильный идентификатор проекта
	TenderRound    int    // раунд из названия, >= 1
	CanonicalKey   string // канонический ключ сравнения
	Representative string // ключ-представитель кластера
}

// Assigner назначает записям project_id через кластеризацию канонических
// ключей внутри каждого клиента. Кластеры между клиентами не пересекаются.
type Assigner struct {
	opts        algorithms.ClusterOptions
	maxParallel int
}

// NewAssigner создает Assigner с параметрами кластеризации
func NewAssigner(opts algorithms.ClusterOptions) *Assigner {
	return &Assigner{opts: opts, maxParallel: defaultMaxParallel}
}

// Assign возвращает по одному Assignment на каждую входную запись, в том же
// порядке. Клиенты — независимые единицы работы: каждый раздел читает только
// свои записи, пишет только свои результаты и держит собственный кэш
// схожести, поэтому обрабатываются параллельно без блокировок.
func (a *Assigner) Assign(items []Item) []Assignment {
	result := make([]Assignment, len(items))

	// Индексы записей по клиентам, в порядке входа — порядок входа задает
	// детерминизм кластеризации
	customerIdx := make(map[string][]int)
	customerOrder := make([]string, 0)
	for i, it := range items {
		if _, ok := customerIdx[it.Customer]; !ok {
			customerOrder = append(customerOrder, it.Customer)
		}
		customerIdx[it.Customer] = append(customerIdx[it.Customer], i)
	}

	var wg sync.WaitGroup
	semaphore := make(chan struct{}, a.maxParallel)

	for _, customer := range customerOrder {
		wg.Add(1)
		go func(customer string, indices []int) {
			defer wg.Done()
			semaphore <- struct{}{}
			defer func() { <-semaphore }()

			a.assignCustomer(customer, indices, items, result)
		}(customer, customerIdx[customer])
	}
	wg.Wait()

	return result
}

// assignCustomer кластеризация и назначение id внутри одного клиента
func (a *Assigner) assignCustomer(customer string, indices []int, items []Item, result []Assignment) {
	keys := make([]string, len(indices))
	for k, i := range indices {
		keys[k] = normalization.CanonicalKey(items[i].CoreName, customer)
	}

	assigned := algorithms.ClusterKeys(keys, a.opts)

	for k, i := range indices {
		key := keys[k]
		rep, ok := assigned[key]
		if !ok {
			// Ключ без кластера представляет сам себя
			rep = key
		}
		result[i] = Assignment{
			ProjectID:      MakeProjectID(customer, rep),
			TenderRound:    normalization.ParseTenderRound(items[i].RawTitle),
			CanonicalKey:   key,
			Representative: rep,
		}
	}
}
