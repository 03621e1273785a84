package scheduler

import (
	"math"
	"strconv"

	"github.com/google/btree"
)

// timelineDegree — степень B-дерева timeline.
const timelineDegree = 16

// limitedFormatWidth — после этой длины FormatLimited обрезает вывод.
const limitedFormatWidth = 80

// Bucket — все воркеры, которых нужно разбудить в момент At.
type Bucket struct {
	At  int64   `json:"at_ms"`
	IDs []int64 `json:"worker_ids"`
}

// bucket — узел timeline: упорядоченное множество id.
// Порядок — порядок первой вставки.
type bucket struct {
	at  int64
	ids []int64
	set map[int64]struct{}
}

func (b *bucket) add(id int64) bool {
	if _, ok := b.set[id]; ok {
		return false
	}
	b.set[id] = struct{}{}
	b.ids = append(b.ids, id)
	return true
}

func (b *bucket) remove(id int64) bool {
	if _, ok := b.set[id]; !ok {
		return false
	}
	delete(b.set, id)
	for i, v := range b.ids {
		if v == id {
			b.ids = append(b.ids[:i], b.ids[i+1:]...)
			break
		}
	}
	return true
}

func bucketLess(a, b *bucket) bool { return a.at < b.at }

// Timeline — отсортированное отображение время → множество id воркеров.
//
// Timeline не потокобезопасен: Scheduler защищает его одной блокировкой.
type Timeline struct {
	tree *btree.BTreeG[*bucket]
}

// NewTimeline создаёт пустой Timeline.
func NewTimeline() *Timeline {
	return &Timeline{tree: btree.NewG(timelineDegree, bucketLess)}
}

// Add добавляет id в корзину timestamp. Возвращает false, если id уже там был.
func (t *Timeline) Add(id, timestamp int64) bool {
	b, ok := t.tree.Get(&bucket{at: timestamp})
	if !ok {
		b = &bucket{at: timestamp, set: make(map[int64]struct{})}
		t.tree.ReplaceOrInsert(b)
	}
	return b.add(id)
}

// Next возвращает наименьшее запланированное время.
func (t *Timeline) Next() (int64, bool) {
	b, ok := t.tree.Min()
	if !ok {
		return 0, false
	}
	return b.at, true
}

// DrainDue удаляет все корзины со временем <= now и возвращает
// объединение их id без повторов, в порядке времени и вставки.
func (t *Timeline) DrainDue(now int64) []int64 {
	var due []int64
	seen := make(map[int64]struct{})

	for {
		b, ok := t.tree.Min()
		if !ok || b.at > now {
			break
		}
		t.tree.DeleteMin()

		for _, id := range b.ids {
			if _, dup := seen[id]; dup {
				continue
			}
			seen[id] = struct{}{}
			due = append(due, id)
		}
	}

	return due
}

// RemoveAll удаляет id из всех корзин, пустые корзины удаляются.
// Полный проход по timeline: O(число корзин). Возвращает число удалённых записей.
func (t *Timeline) RemoveAll(id int64) int {
	var removed int
	var empty []*bucket

	t.tree.Ascend(func(b *bucket) bool {
		if b.remove(id) {
			removed++
			if len(b.ids) == 0 {
				empty = append(empty, b)
			}
		}
		return true
	})

	for _, b := range empty {
		t.tree.Delete(b)
	}

	return removed
}

// Len возвращает число корзин.
func (t *Timeline) Len() int {
	return t.tree.Len()
}

// Snapshot возвращает копию timeline по возрастанию времени.
func (t *Timeline) Snapshot() []Bucket {
	out := make([]Bucket, 0, t.tree.Len())
	t.tree.Ascend(func(b *bucket) bool {
		ids := make([]int64, len(b.ids))
		copy(ids, b.ids)
		out = append(out, Bucket{At: b.at, IDs: ids})
		return true
	})
	return out
}

// FormatLimited выводит timeline относительно now для отладочного лога:
//
//	[7ms : 2, 10ms : 1,3, 15s : 1, 12m : 4, MAX : 5]
//
// Дельта больше 10 минут — в минутах, больше 10 секунд — в секундах.
// Вывод длиннее 80 символов обрезается до "...]".
func (t *Timeline) FormatLimited(now int64) string {
	if t.tree.Len() == 0 {
		return "[]"
	}

	buf := []byte{'['}
	truncated := false

	t.tree.Ascend(func(b *bucket) bool {
		if len(buf) > limitedFormatWidth {
			buf = buf[:len(buf)-2]
			buf = append(buf, "...]"...)
			truncated = true
			return false
		}

		delta := b.at - now
		switch {
		case b.at == math.MaxInt64:
			buf = append(buf, "MAX"...)
		case delta > 600_000:
			buf = strconv.AppendInt(buf, delta/60_000, 10)
			buf = append(buf, 'm')
		case delta > 10_000:
			buf = strconv.AppendInt(buf, delta/1000, 10)
			buf = append(buf, 's')
		default:
			buf = strconv.AppendInt(buf, delta, 10)
			buf = append(buf, "ms"...)
		}

		buf = append(buf, " : "...)
		for i, id := range b.ids {
			if i > 0 {
				buf = append(buf, ',')
			}
			buf = strconv.AppendInt(buf, id, 10)
		}
		buf = append(buf, ", "...)
		return true
	})

	if truncated {
		return string(buf)
	}

	buf = buf[:len(buf)-2]
	buf = append(buf, ']')
	return string(buf)
}
