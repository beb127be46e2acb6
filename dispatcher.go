package webgrep

import (
	"bufio"
	"io"
	"net/http"
	"regexp"

	"github.com/webgrep/webgrep/internal/glog"
)

// Dispatcher is the single driver goroutine owning the Request Runner, the
// Page Runner, and the counters that decide when the crawl has drained. It
// is the only goroutine that calls into either runner; every other
// goroutine in the process is a spawned request or page task that talks
// back solely through the ticket channels.
type Dispatcher struct {
	cache    Cache
	requests *RequestRunner
	pages    *PageRunner

	requestTickets chan requestTicket
	pageTickets    chan pageTicket

	requestsOutstanding int
	pagesOutstanding    int
	pagesCompleted      int

	out *bufio.Writer
}

// NewDispatcher wires a Dispatcher from its components. pattern is the
// (already case-folded, per -i) match expression; excludePattern may be nil.
func NewDispatcher(cfg Config, cache Cache, transport http.RoundTripper, pattern, excludePattern *regexp.Regexp, stdout io.Writer) *Dispatcher {
	requestTickets := make(chan requestTicket)
	pageTickets := make(chan pageTicket)

	d := &Dispatcher{
		cache:          cache,
		requestTickets: requestTickets,
		pageTickets:    pageTickets,
		out:            bufio.NewWriter(stdout),
	}
	d.requests = NewRequestRunner(cache, transport, cfg, requestTickets)
	d.pages = NewPageRunner(cfg.MaxPageTasks, cfg.MaxDepth, cfg.MaxLinksPerPage, pattern, excludePattern, cache, pageTickets)
	return d
}

// Run seeds the crawl from seeds, then drains the task set until it is
// empty. It returns once every spawned request and page task has been
// redeemed.
func (d *Dispatcher) Run(seeds []string) {
	for _, seed := range seeds {
		d.seed(seed)
	}

	for d.requestsOutstanding > 0 || d.pagesOutstanding > 0 {
		select {
		case ticket := <-d.requestTickets:
			d.handleRequestTicket(ticket)
		case ticket := <-d.pageTickets:
			d.handlePageTicket(ticket)
		}
	}
	d.out.Flush()
}

func (d *Dispatcher) seed(url string) {
	outcome, ok := d.cache.Get(url)
	switch {
	case ok && outcome.Success():
		d.pagesOutstanding++
		d.pages.Push(NewRootNode(url, outcome.Body))
	case ok:
		d.pagesCompleted++
	default:
		d.requestsOutstanding++
		d.requests.Push(nil, url)
	}
}

func (d *Dispatcher) handleRequestTicket(ticket requestTicket) {
	node, errMsg := d.requests.Redeem(ticket)
	d.requestsOutstanding--

	if node != nil {
		d.pagesOutstanding++
		d.pages.Push(node)
		return
	}
	glog.Debug("terminal fetch error: %s", errMsg)
	d.pagesCompleted++
}

// handlePageTicket retires a redeemed page parse, emits its match (if any),
// and folds in the counts from any expansion: a bad cache hit is already a
// completed page and never touches requestsOutstanding.
func (d *Dispatcher) handlePageTicket(ticket pageTicket) {
	result := d.pages.Redeem(ticket)
	d.pagesOutstanding--
	d.pagesCompleted++

	if result.HasMatch {
		d.out.WriteString(result.MatchData)
		d.out.WriteString("\n")
		d.out.Flush()
	}

	if !result.HasExpansion {
		return
	}

	// Request URLs are tracked by requestsOutstanding until their ticket
	// comes back; handleRequestTicket counts the resulting page then.
	d.pagesOutstanding += result.GoodCacheHits
	d.pagesCompleted += result.BadCacheHits

	d.requestsOutstanding += len(result.RequestURLs)
	d.requests.Extend(result.Parent, result.RequestURLs)
}
