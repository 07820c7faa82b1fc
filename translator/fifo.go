package translator

// fifo is an unbounded single-goroutine queue
// Popped slots are zeroed; storage compacts once the dead prefix dominates
type fifo[T any] struct {
	items []T
	head  int
}

func (q *fifo[T]) len() int {
	return len(q.items) - q.head
}

func (q *fifo[T]) empty() bool {
	return q.head == len(q.items)
}

func (q *fifo[T]) push(v T) {
	q.items = append(q.items, v)
}

// front returns the oldest element; caller checks empty first
func (q *fifo[T]) front() *T {
	return &q.items[q.head]
}

// back returns the newest element; caller checks empty first
func (q *fifo[T]) back() *T {
	return &q.items[len(q.items)-1]
}

func (q *fifo[T]) pop() T {
	var zero T
	v := q.items[q.head]
	q.items[q.head] = zero
	q.head++

	switch {
	case q.head == len(q.items):
		q.items = q.items[:0]
		q.head = 0
	case q.head > 32 && q.head*2 > len(q.items):
		n := copy(q.items, q.items[q.head:])
		clear(q.items[n:])
		q.items = q.items[:n]
		q.head = 0
	}
	return v
}
