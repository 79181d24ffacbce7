package reasoning

// deferred is a suspended item. translate is false for items given to Emit,
// which must not open a barrier when flushed.
type deferred struct {
	item      Item
	translate bool
}

// deferredQueue holds items whose emission is suspended while a barrier is open.
type deferredQueue struct {
	items []deferred
}

func (q *deferredQueue) push(item Item, translate bool) {
	q.items = append(q.items, deferred{item: item, translate: translate})
}

func (q *deferredQueue) pop() (deferred, bool) {
	if len(q.items) == 0 {
		return deferred{}, false
	}
	d := q.items[0]
	q.items[0] = deferred{}
	q.items = q.items[1:]
	if len(q.items) == 0 {
		q.items = nil
	}
	return d, true
}

func (q *deferredQueue) len() int {
	return len(q.items)
}
