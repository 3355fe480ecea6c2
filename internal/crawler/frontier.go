package crawler

// compactThreshold is the number of consumed slots after which the
// frontier reclaims the space in front of its read cursor.
const compactThreshold = 1024

// frontier is the FIFO queue of discovered URLs waiting to be visited.
//
// Design decision: We keep an arena of URLs and a read cursor instead of
// re-slicing the head on every pop because:
//  1. Popping is O(1) without allocations
//  2. The consumed prefix can be released in one copy once it grows large
//
// The frontier may hold the same URL several times; duplicates are dropped
// when they are popped and found in the visited set.
type frontier struct {
	items []string
	head  int
}

// newFrontier creates a frontier seeded with the given URLs.
func newFrontier(seeds ...string) *frontier {
	f := &frontier{items: make([]string, 0, 64)}
	f.push(seeds...)
	return f
}

// push appends URLs to the tail, preserving their order.
func (f *frontier) push(urls ...string) {
	f.items = append(f.items, urls...)
}

// pop removes and returns the earliest pushed URL.
// It returns false when the frontier is empty.
func (f *frontier) pop() (string, bool) {
	if f.head >= len(f.items) {
		return "", false
	}

	u := f.items[f.head]
	f.items[f.head] = ""
	f.head++

	if f.head >= compactThreshold && f.head*2 >= len(f.items) {
		f.compact()
	}
	return u, true
}

// len returns the number of URLs waiting in the frontier.
func (f *frontier) len() int {
	return len(f.items) - f.head
}

// compact moves the pending URLs to the front of the arena.
func (f *frontier) compact() {
	n := copy(f.items, f.items[f.head:])
	clear(f.items[n:])
	f.items = f.items[:n]
	f.head = 0
}

// visitedSet records URLs that have been dequeued during a crawl.
// It only grows; order keeps the sequence in which URLs were marked.
type visitedSet struct {
	seen  map[string]struct{}
	order []string
}

func newVisitedSet() *visitedSet {
	return &visitedSet{seen: make(map[string]struct{})}
}

// has reports whether u has been visited.
func (v *visitedSet) has(u string) bool {
	_, ok := v.seen[u]
	return ok
}

// add marks u as visited.
func (v *visitedSet) add(u string) {
	if v.has(u) {
		return
	}
	v.seen[u] = struct{}{}
	v.order = append(v.order, u)
}

// len returns the number of visited URLs.
func (v *visitedSet) len() int {
	return len(v.order)
}
