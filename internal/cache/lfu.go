// Package cache содержит кеш фиксированного размера с вытеснением наименее часто используемых записей.
package cache

import (
	"container/list"
	"sync"
)

type entry[V any] struct {
	key   string
	value V
	freq  int
}

// Stats содержит статистику работы кеша.
type Stats struct {
	Size      int    `json:"size"`      // количество записей в кеше
	Capacity  int    `json:"capacity"`  // максимальное количество записей
	Hits      uint64 `json:"hits"`      // количество попаданий
	Misses    uint64 `json:"misses"`    // количество промахов
	Evictions uint64 `json:"evictions"` // количество вытесненных записей
}

// LFU хранит не более capacity записей и при переполнении вытесняет запись
// с наименьшей частотой обращений. Среди записей с одинаковой частотой
// вытесняется та, что раньше других попала в свою группу частоты.
//
// Все методы безопасны для конкурентного вызова.
type LFU[V any] struct {
	mu       sync.Mutex
	items    map[string]*list.Element
	buckets  map[int]*list.List
	minFreq  int
	capacity int
	stats    Stats
}

// New создает кеш указанной емкости. Кеш с емкостью меньше единицы ничего не хранит.
func New[V any](capacity int) *LFU[V] {
	if capacity < 0 {
		capacity = 0
	}

	return &LFU[V]{
		items:    make(map[string]*list.Element, capacity),
		buckets:  make(map[int]*list.List),
		capacity: capacity,
	}
}

// Get возвращает значение по ключу и увеличивает частоту обращений к записи.
func (c *LFU[V]) Get(key string) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	elem, ok := c.items[key]
	if !ok {
		c.stats.Misses++
		var zero V
		return zero, false
	}

	c.stats.Hits++
	e := c.touch(elem)
	return e.value, true
}

// Put добавляет или заменяет значение по ключу.
// Замена значения увеличивает частоту обращений так же, как Get.
func (c *LFU[V]) Put(key string, value V) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if elem, ok := c.items[key]; ok {
		e := c.touch(elem)
		e.value = value
		return
	}

	if c.capacity == 0 {
		return
	}

	if len(c.items) >= c.capacity {
		c.evict()
	}

	e := &entry[V]{key: key, value: value, freq: 1}
	c.items[key] = c.bucket(1).PushBack(e)
	c.minFreq = 1
}

// Remove удаляет запись по ключу. Возвращает true, если запись была в кеше.
func (c *LFU[V]) Remove(key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	elem, ok := c.items[key]
	if !ok {
		return false
	}

	e := c.unlink(elem)
	delete(c.items, key)

	if e.freq == c.minFreq && c.buckets[e.freq] == nil {
		c.resetMinFreq()
	}

	return true
}

// Len возвращает количество записей в кеше.
func (c *LFU[V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	return len(c.items)
}

// Capacity возвращает емкость кеша.
func (c *LFU[V]) Capacity() int {
	return c.capacity
}

// Stats возвращает снимок статистики кеша.
func (c *LFU[V]) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()

	s := c.stats
	s.Size = len(c.items)
	s.Capacity = c.capacity
	return s
}

// touch переносит запись в конец группы со следующей частотой.
func (c *LFU[V]) touch(elem *list.Element) *entry[V] {
	e := c.unlink(elem)

	if e.freq == c.minFreq && c.buckets[e.freq] == nil {
		c.minFreq++
	}

	e.freq++
	c.items[e.key] = c.bucket(e.freq).PushBack(e)
	return e
}

func (c *LFU[V]) evict() {
	victims, ok := c.buckets[c.minFreq]
	if !ok {
		return
	}

	e := c.unlink(victims.Front())
	delete(c.items, e.key)
	c.stats.Evictions++
}

// unlink удаляет запись из ее группы частоты, пустая группа удаляется из индекса.
func (c *LFU[V]) unlink(elem *list.Element) *entry[V] {
	e, _ := elem.Value.(*entry[V])
	bucket := c.buckets[e.freq]
	bucket.Remove(elem)

	if bucket.Len() == 0 {
		delete(c.buckets, e.freq)
	}

	return e
}

func (c *LFU[V]) bucket(freq int) *list.List {
	b, ok := c.buckets[freq]
	if !ok {
		b = list.New()
		c.buckets[freq] = b
	}

	return b
}

// resetMinFreq ищет минимальную частоту после явного удаления записи.
// Вытеснение и добавление поддерживают minFreq за O(1), поиск нужен только здесь.
func (c *LFU[V]) resetMinFreq() {
	c.minFreq = 0
	for freq := range c.buckets {
		if c.minFreq == 0 || freq < c.minFreq {
			c.minFreq = freq
		}
	}
}
