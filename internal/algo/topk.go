package algo

// TopK returns the k largest items by key, sorted descending. When k covers
// the whole input it degenerates to a full descending sort; otherwise a
// bounded min-heap of size k is maintained in O(n log k). The returned value
// multiset always equals the true top k; order among tied keys beyond the
// final descending sort is unspecified.
func TopK[T any](items []T, k int, key func(T) float64) []T {
	if k <= 0 {
		return nil
	}
	if k >= len(items) {
		return SortBy(items, key, true)
	}

	heap := make([]T, 0, k)
	for _, item := range items {
		if len(heap) < k {
			heap = append(heap, item)
			siftUp(heap, len(heap)-1, key)
		} else if key(item) > key(heap[0]) {
			heap[0] = item
			siftDown(heap, 0, key)
		}
	}

	return SortBy(heap, key, true)
}

func siftUp[T any](heap []T, i int, key func(T) float64) {
	for i > 0 {
		parent := (i - 1) / 2
		if key(heap[i]) >= key(heap[parent]) {
			return
		}
		heap[i], heap[parent] = heap[parent], heap[i]
		i = parent
	}
}

func siftDown[T any](heap []T, i int, key func(T) float64) {
	for {
		left, right := 2*i+1, 2*i+2
		smallest := i
		if left < len(heap) && key(heap[left]) < key(heap[smallest]) {
			smallest = left
		}
		if right < len(heap) && key(heap[right]) < key(heap[smallest]) {
			smallest = right
		}
		if smallest == i {
			return
		}
		heap[i], heap[smallest] = heap[smallest], heap[i]
		i = smallest
	}
}
