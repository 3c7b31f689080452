package cache

// node is an element of a doubly-linked recency list. It stores the key so
// the owning map entry can be removed when the node is evicted.
type node[K comparable] struct {
	key        K
	prev, next *node[K]
}

// list orders keys from most (head) to least (tail) recently used.
// It is not thread-safe; the owning cache holds the lock.
type list[K comparable] struct {
	head, tail *node[K]
	len        int
}

func (l *list[K]) pushFront(key K) *node[K] {
	n := &node[K]{key: key}
	l.linkFront(n)
	return n
}

func (l *list[K]) moveToFront(n *node[K]) {
	if n == nil || n == l.head {
		return
	}
	l.unlink(n)
	l.linkFront(n)
}

func (l *list[K]) remove(n *node[K]) {
	if n != nil {
		l.unlink(n)
	}
}

// popBack removes the least recently used key.
func (l *list[K]) popBack() (K, bool) {
	if l.tail == nil {
		var zero K
		return zero, false
	}
	n := l.tail
	l.unlink(n)
	return n.key, true
}

// each visits keys from least to most recently used. fn must not modify
// the list except by removing the node it was handed.
func (l *list[K]) each(fn func(n *node[K])) {
	for n := l.tail; n != nil; {
		prev := n.prev
		fn(n)
		n = prev
	}
}

func (l *list[K]) clear() {
	l.head, l.tail, l.len = nil, nil, 0
}

func (l *list[K]) linkFront(n *node[K]) {
	n.prev = nil
	n.next = l.head
	if l.head != nil {
		l.head.prev = n
	}
	l.head = n
	if l.tail == nil {
		l.tail = n
	}
	l.len++
}

func (l *list[K]) unlink(n *node[K]) {
	if n.prev != nil {
		n.prev.next = n.next
	} else {
		l.head = n.next
	}
	if n.next != nil {
		n.next.prev = n.prev
	} else {
		l.tail = n.prev
	}
	n.prev, n.next = nil, nil
	l.len--
}
