package rowan

// MessageQueue is an append-only buffer of opaque messages, drained once per
// cycle. The zero value is ready to use.
type MessageQueue struct {
	messages []any
}

// Enqueue appends messages in order.
func (q *MessageQueue) Enqueue(msgs ...any) {
	q.messages = append(q.messages, msgs...)
}

// Len returns the number of buffered messages.
func (q *MessageQueue) Len() int {
	return len(q.messages)
}

// Flush returns every buffered message and empties the queue. The caller owns
// the returned slice; later Enqueue calls start a new buffer.
func (q *MessageQueue) Flush() []any {
	out := q.messages
	if len(out) == 0 {
		return nil
	}
	q.messages = make([]any, 0, cap(out))
	return out
}
