package percept

// #region working-memory

// WorkingMemory is a bounded ring of recent percepts. Oldest entries are
// evicted once capacity is reached. Not safe for concurrent use; ownership
// belongs to the scheduling loop.
type WorkingMemory struct {
	buf  []Percept
	next int
	full bool
}

// NewWorkingMemory creates a ring with the given capacity (minimum 1).
func NewWorkingMemory(capacity int) *WorkingMemory {
	if capacity < 1 {
		capacity = 1
	}
	return &WorkingMemory{buf: make([]Percept, capacity)}
}

// Add appends a percept, evicting the oldest when full.
func (w *WorkingMemory) Add(p Percept) {
	w.buf[w.next] = p
	w.next = (w.next + 1) % len(w.buf)
	if w.next == 0 {
		w.full = true
	}
}

// Len returns the number of stored percepts.
func (w *WorkingMemory) Len() int {
	if w.full {
		return len(w.buf)
	}
	return w.next
}

// Recent returns up to n percepts, newest first.
func (w *WorkingMemory) Recent(n int) []Percept {
	size := w.Len()
	if n > size {
		n = size
	}
	out := make([]Percept, 0, n)
	for i := 1; i <= n; i++ {
		idx := (w.next - i + len(w.buf)) % len(w.buf)
		out = append(out, w.buf[idx])
	}
	return out
}

// Last returns the most recent percept and whether one exists.
func (w *WorkingMemory) Last() (Percept, bool) {
	if w.Len() == 0 {
		return Percept{}, false
	}
	idx := (w.next - 1 + len(w.buf)) % len(w.buf)
	return w.buf[idx], true
}

// #endregion working-memory
