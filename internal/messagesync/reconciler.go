package messagesync

import "github.com/nfrund/livechat/internal/domain"

// Reconciler merges full snapshots and incremental changes into one
// newest-first list of at most limit messages. It is not safe for concurrent
// use; the Synchronizer confines it to its event loop.
type Reconciler struct {
	limit    int
	messages []domain.Message
}

// NewReconciler creates an empty Reconciler. A non-positive limit means
// DefaultLimit.
func NewReconciler(limit int) *Reconciler {
	if limit <= 0 {
		limit = DefaultLimit
	}
	return &Reconciler{limit: limit}
}

// ReplaceAll swaps the whole list for a fetched snapshot, which the backend
// already orders newest first.
func (r *Reconciler) ReplaceAll(messages []domain.Message) {
	n := min(len(messages), r.limit)
	next := make([]domain.Message, n)
	copy(next, messages[:n])
	r.messages = next
}

// Prepend puts msg at the front regardless of its timestamp. Ids are not
// checked for duplicates. When the list is full the oldest entry is dropped.
func (r *Reconciler) Prepend(msg domain.Message) {
	n := min(len(r.messages)+1, r.limit)
	next := make([]domain.Message, n)
	next[0] = msg
	copy(next[1:], r.messages)
	r.messages = next
}

// Remove deletes every entry with the given id and reports whether any was
// present.
func (r *Reconciler) Remove(id string) bool {
	next := make([]domain.Message, 0, len(r.messages))
	for _, m := range r.messages {
		if m.ID != id {
			next = append(next, m)
		}
	}
	if len(next) == len(r.messages) {
		return false
	}
	r.messages = next
	return true
}

// Messages returns a copy of the current list.
func (r *Reconciler) Messages() []domain.Message {
	out := make([]domain.Message, len(r.messages))
	copy(out, r.messages)
	return out
}

// Len returns the number of messages held.
func (r *Reconciler) Len() int {
	return len(r.messages)
}
