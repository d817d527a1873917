package crawler

// frontier is the in-memory set of discovered but unprocessed URLs.
// It pops in insertion order and never holds the same URL twice.
type frontier struct {
	queue  []string
	queued map[string]struct{}
}

func newFrontier() *frontier {
	return &frontier{
		queue:  make([]string, 0),
		queued: make(map[string]struct{}),
	}
}

// push adds u unless it is already waiting. It reports whether u was added.
func (f *frontier) push(u string) bool {
	if _, ok := f.queued[u]; ok {
		return false
	}
	f.queued[u] = struct{}{}
	f.queue = append(f.queue, u)
	return true
}

// popN removes and returns up to n URLs from the front of the queue.
func (f *frontier) popN(n int) []string {
	n = min(max(n, 1), len(f.queue))
	batch := make([]string, n)
	copy(batch, f.queue[:n])
	f.queue = f.queue[n:]
	for _, u := range batch {
		delete(f.queued, u)
	}
	return batch
}

// contains reports whether u is waiting in the queue.
func (f *frontier) contains(u string) bool {
	_, ok := f.queued[u]
	return ok
}

func (f *frontier) len() int {
	return len(f.queue)
}
