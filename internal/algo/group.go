package algo

// Group is one key's members in input order.
type Group[T any] struct {
	Key   string
	Items []T
}

// GroupBy buckets items by key. Keys appear in first-seen order and members
// keep their input order within each group.
func GroupBy[T any](items []T, key func(T) string) []Group[T] {
	index := make(map[string]int)
	var groups []Group[T]

	for _, item := range items {
		k := key(item)
		i, ok := index[k]
		if !ok {
			i = len(groups)
			index[k] = i
			groups = append(groups, Group[T]{Key: k})
		}
		groups[i].Items = append(groups[i].Items, item)
	}

	return groups
}
