package listview

// Lookup resolves id against a sibling collection by linear scan.
func Lookup[T Record](items []T, id string) (T, bool) {
	for _, it := range items {
		if it.RecordID() == id {
			return it, true
		}
	}
	var zero T
	return zero, false
}

// PatchOne returns a copy of items with the first record matching id
// replaced by fn(record). Every other element is copied unchanged.
// The input slice is never modified.
func PatchOne[T Record](items []T, id string, fn func(T) T) ([]T, bool) {
	for i, it := range items {
		if it.RecordID() != id {
			continue
		}
		out := make([]T, len(items))
		copy(out, items)
		out[i] = fn(it)
		return out, true
	}
	return items, false
}

// RemoveOne returns a copy of items without the first record matching id.
func RemoveOne[T Record](items []T, id string) ([]T, bool) {
	for i, it := range items {
		if it.RecordID() != id {
			continue
		}
		out := make([]T, 0, len(items)-1)
		out = append(out, items[:i]...)
		out = append(out, items[i+1:]...)
		return out, true
	}
	return items, false
}
