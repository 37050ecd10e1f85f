package runtime

// writeOnce is a slot that accepts a single value.
type writeOnce[T any] struct {
	v   T
	set bool
}

// Set stores v and reports whether the slot was still empty.
func (w *writeOnce[T]) Set(v T) bool {
	if w.set {
		return false
	}
	w.v, w.set = v, true
	return true
}

func (w *writeOnce[T]) Get() (T, bool) {
	return w.v, w.set
}
