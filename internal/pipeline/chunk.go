package pipeline

// DefaultChunkSize is how many grouped items one chunk file holds unless
// overridden.
const DefaultChunkSize = 25

// SplitChunks slices items into chunks of at most size; the last chunk may be
// shorter but is never empty. Non-positive sizes fall back to
// DefaultChunkSize.
func SplitChunks[T any](items []T, size int) [][]T {
	if size <= 0 {
		size = DefaultChunkSize
	}
	var chunks [][]T
	for start := 0; start < len(items); start += size {
		end := start + size
		if end > len(items) {
			end = len(items)
		}
		chunks = append(chunks, items[start:end])
	}
	return chunks
}
