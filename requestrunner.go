package webgrep

import (
	"container/heap"
	"context"
	"net/http"
)

// pendingRequest is a queued (parent, url) pair waiting for its host's
// Fetcher to free up.
type pendingRequest struct {
	parent *PageNode
	url    string
}

// pendingHeap is a max-heap of pendingRequest ordered by URL, giving a
// deterministic, if arbitrary, pop order among requests queued behind the
// same host.
type pendingHeap []*pendingRequest

func (h pendingHeap) Len() int            { return len(h) }
func (h pendingHeap) Less(i, j int) bool  { return h[i].url > h[j].url }
func (h pendingHeap) Swap(i, j int)       { h[i], h[j] = h[j], h[i] }
func (h *pendingHeap) Push(x interface{}) { *h = append(*h, x.(*pendingRequest)) }
func (h *pendingHeap) Pop() interface{} {
	old := *h
	n := len(old)
	item := old[n-1]
	*h = old[:n-1]
	return item
}

// hostBucket holds a slot for the host's single Fetcher when idle, empty
// while a request is in flight, plus the heap of requests queued behind it.
type hostBucket struct {
	fetcher *Fetcher
	waiting pendingHeap
}

// RequestRunner schedules outbound HTTP requests, one in flight per host at
// a time. It is not safe for concurrent use: every exported method here
// runs on the Dispatcher's single driver goroutine. The asynchronous
// request tasks it spawns communicate back exclusively through the ticket
// channel; they touch no RequestRunner state directly.
type RequestRunner struct {
	cache     Cache
	transport http.RoundTripper
	cfg       Config
	hosts     map[string]*hostBucket
	tickets   chan<- requestTicket
}

// NewRequestRunner builds a Request Runner sharing the given cache,
// transport and ticket channel with the rest of the driver.
func NewRequestRunner(cache Cache, transport http.RoundTripper, cfg Config, tickets chan<- requestTicket) *RequestRunner {
	return &RequestRunner{
		cache:     cache,
		transport: transport,
		cfg:       cfg,
		hosts:     make(map[string]*hostBucket),
		tickets:   tickets,
	}
}

// Push enqueues a request for url, spawning it immediately if its host's
// Fetcher is idle. parent is nil for a seed URL with no lineage yet.
func (rr *RequestRunner) Push(parent *PageNode, url string) {
	h := HostKey(url)
	b, ok := rr.hosts[h]
	if !ok {
		b = &hostBucket{}
		rr.hosts[h] = b
		go rr.spawn(h, NewFetcher(rr.transport, rr.cfg), parent, url)
		return
	}
	if b.fetcher != nil {
		f := b.fetcher
		b.fetcher = nil
		go rr.spawn(h, f, parent, url)
		return
	}
	heap.Push(&b.waiting, &pendingRequest{parent: parent, url: url})
}

// Extend pushes every URL in urls, in iteration order, sharing one parent
// reference.
func (rr *RequestRunner) Extend(parent *PageNode, urls []string) {
	for _, u := range urls {
		rr.Push(parent, u)
	}
}

// spawn is the asynchronous request task: consult the cache, fall through
// to the Fetcher on a miss, persist the outcome, and report a ticket. It
// touches no RequestRunner state, only the Fetcher it was handed and the
// process-wide Cache.
func (rr *RequestRunner) spawn(host string, fetcher *Fetcher, parent *PageNode, url string) {
	outcome, ok := rr.cache.Get(url)
	if !ok {
		outcome = fetcher.Get(context.Background(), url)
		rr.cache.Set(url, outcome)
	}

	ticket := requestTicket{host: host, fetcher: fetcher}
	if outcome.Success() {
		if parent == nil {
			ticket.node = NewRootNode(url, outcome.Body)
		} else {
			ticket.node = NewChildNode(parent, url, outcome.Body)
		}
	} else {
		ticket.err = outcome.Err
	}
	rr.tickets <- ticket
}

// Redeem hands the returned Fetcher to the next waiter on its host, or
// parks it back in the slot, and returns the inner result to the caller.
func (rr *RequestRunner) Redeem(ticket requestTicket) (*PageNode, string) {
	b := rr.hosts[ticket.host]
	if b.waiting.Len() > 0 {
		next := heap.Pop(&b.waiting).(*pendingRequest)
		go rr.spawn(ticket.host, ticket.fetcher, next.parent, next.url)
	} else {
		if b.fetcher != nil {
			panic("request runner invariant violated: host slot already occupied")
		}
		b.fetcher = ticket.fetcher
	}
	return ticket.node, ticket.err
}
