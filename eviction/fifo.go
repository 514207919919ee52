// This file implements FIFO eviction.

package eviction

import "container/list"

// fifo keeps keys in insertion order. The front of queue is the oldest key.
// Reads never move an element.
type fifo struct {
	queue *list.List
	index map[string]*list.Element
}

func newFIFO() *fifo {
	return &fifo{queue: list.New(), index: make(map[string]*list.Element)}
}

func (f *fifo) OnGet(string) {}

func (f *fifo) OnPut(k string) {
	if _, tracked := f.index[k]; tracked {
		return
	}
	f.index[k] = f.queue.PushBack(k)
}

func (f *fifo) Evict() string {
	oldest := f.queue.Front()
	if oldest == nil {
		return ""
	}
	k := f.queue.Remove(oldest).(string)
	delete(f.index, k)
	return k
}

func (f *fifo) Remove(k string) {
	if el, tracked := f.index[k]; tracked {
		f.queue.Remove(el)
		delete(f.index, k)
	}
}

func (f *fifo) Len() int { return f.queue.Len() }
