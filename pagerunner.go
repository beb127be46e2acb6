package webgrep

import (
	"container/heap"
	"regexp"

	"github.com/webgrep/webgrep/internal/glog"
)

// pageHeap is the min-heap of queued PageNodes ordered by pageNodeLess
// (shallower depth pops first), backing the Page Runner's queue.
type pageHeap []*PageNode

func (h pageHeap) Len() int            { return len(h) }
func (h pageHeap) Less(i, j int) bool  { return pageNodeLess(h[i], h[j]) }
func (h pageHeap) Swap(i, j int)       { h[i], h[j] = h[j], h[i] }
func (h *pageHeap) Push(x interface{}) { *h = append(*h, x.(*PageNode)) }
func (h *pageHeap) Pop() interface{} {
	old := *h
	n := len(old)
	item := old[n-1]
	*h = old[:n-1]
	return item
}

// PageRedeemResult is what PageRunner.Redeem hands back to the Dispatcher:
// the match (if any) plus, when the ticket carried expansion data, the
// counts and URLs the Dispatcher needs to update its own bookkeeping and
// feed the Request Runner.
type PageRedeemResult struct {
	MatchData string
	HasMatch  bool

	HasExpansion  bool
	GoodCacheHits int
	BadCacheHits  int
	Parent        *PageNode
	RequestURLs   []string
}

// PageRunner bounds how many pages are parsed concurrently and how far the
// crawl expands from each page's links. Like RequestRunner, every exported
// method here is driver-owned; the parse tasks it spawns compute everything
// off to the side and report back solely through the ticket channel.
type PageRunner struct {
	queue    pageHeap
	numTasks int

	maxTasks        int
	maxDepth        int
	maxLinksPerPage int // 0 means unlimited
	pattern         *regexp.Regexp
	excludePattern  *regexp.Regexp // nil when --exclude-urls-re is unset

	cache   Cache
	tickets chan<- pageTicket
}

// NewPageRunner builds a Page Runner bounded by maxTasks concurrent page
// parses, expanding links only up to maxDepth and matching inner text
// against pattern. excludePattern may be nil. maxLinksPerPage caps how many
// outbound links a single page may contribute to the frontier (0 disables
// the cap), a defensive valve against pages with unbounded link counts.
func NewPageRunner(maxTasks, maxDepth, maxLinksPerPage int, pattern, excludePattern *regexp.Regexp, cache Cache, tickets chan<- pageTicket) *PageRunner {
	return &PageRunner{
		maxTasks:        maxTasks,
		maxDepth:        maxDepth,
		maxLinksPerPage: maxLinksPerPage,
		pattern:         pattern,
		excludePattern:  excludePattern,
		cache:           cache,
		tickets:         tickets,
	}
}

// Push spawns node's parse immediately while under maxTasks (the queue is
// empty by invariant whenever that holds), else queues the node for later
// admission.
func (pr *PageRunner) Push(node *PageNode) {
	if pr.numTasks < pr.maxTasks {
		pr.spawn(node)
		return
	}
	heap.Push(&pr.queue, node)
}

// NumTasks reports the number of page parses currently in flight, for
// diagnostics and tests.
func (pr *PageRunner) NumTasks() int { return pr.numTasks }

// QueueLen reports how many PageNodes are waiting for admission.
func (pr *PageRunner) QueueLen() int { return pr.queue.Len() }

func (pr *PageRunner) spawn(node *PageNode) {
	pr.numTasks++
	go func() {
		pr.tickets <- pr.parsePage(node)
	}()
}

// parsePage matches node's content against the pattern and, if node has
// depth remaining, extracts and classifies its outbound links. It runs off
// the driver goroutine and must not touch PageRunner's mutable state.
func (pr *PageRunner) parsePage(node *PageNode) pageTicket {
	if node.Body.Kind != BodyHTML {
		if pr.pattern.MatchString(node.Body.MatchableText()) {
			return pageTicket{matchData: node.DisplayPath(), hasMatch: true}
		}
		return pageTicket{}
	}

	doc, err := ParseHTML([]byte(node.Body.Text))
	if err != nil {
		return pageTicket{}
	}

	ticket := pageTicket{}
	if pr.pattern.MatchString(InnerText(doc)) {
		ticket.matchData = node.DisplayPath()
		ticket.hasMatch = true
	}

	if node.Depth >= pr.maxDepth {
		return ticket
	}

	links := ExtractLinks(node.URL, doc)
	if pr.maxLinksPerPage > 0 && len(links) > pr.maxLinksPerPage {
		glog.Debug("trimming %d links on %s to %d", len(links), node.URL, pr.maxLinksPerPage)
		links = links[:pr.maxLinksPerPage]
	}
	ancestors := node.AncestorURLs()

	var children []*PageNode
	var requestURLs []string
	badCacheHits := 0

	for _, link := range links {
		if _, isAncestor := ancestors[link]; isAncestor {
			continue
		}
		if pr.excludePattern != nil && pr.excludePattern.MatchString(link) {
			continue
		}
		if outcome, ok := pr.cache.Get(link); ok {
			if outcome.Success() {
				children = append(children, NewChildNode(node, link, outcome.Body))
			} else {
				badCacheHits++
			}
			continue
		}
		requestURLs = append(requestURLs, link)
	}

	ticket.expansion = &pageExpansion{
		children:     children,
		badCacheHits: badCacheHits,
		parent:       node,
		requestURLs:  requestURLs,
	}
	return ticket
}

// Redeem retires an in-flight parse, admitting queued or newly discovered
// children and returning the match/expansion data to the caller.
func (pr *PageRunner) Redeem(ticket pageTicket) PageRedeemResult {
	pr.numTasks--

	result := PageRedeemResult{MatchData: ticket.matchData, HasMatch: ticket.hasMatch}
	if ticket.expansion == nil {
		if pr.queue.Len() > 0 {
			pr.spawn(heap.Pop(&pr.queue).(*PageNode))
		}
		return result
	}

	exp := ticket.expansion
	pr.admitChildren(exp.children)
	result.HasExpansion = true
	result.GoodCacheHits = len(exp.children)
	result.BadCacheHits = exp.badCacheHits
	result.Parent = exp.parent
	result.RequestURLs = exp.requestURLs
	return result
}

// admitChildren admits children up to maxTasks, spawning directly when
// there is room and otherwise queuing: the queue is non-empty only when the
// scheduler is fully saturated, never as an accident of ordering.
func (pr *PageRunner) admitChildren(children []*PageNode) {
	n := pr.maxTasks - pr.numTasks

	if pr.queue.Len() == 0 && n >= len(children) {
		for _, c := range children {
			pr.spawn(c)
		}
		return
	}

	if n >= len(children)+pr.queue.Len() {
		for _, c := range children {
			pr.spawn(c)
		}
		for pr.queue.Len() > 0 {
			pr.spawn(heap.Pop(&pr.queue).(*PageNode))
		}
		return
	}

	for _, c := range children {
		heap.Push(&pr.queue, c)
	}
	for i := 0; i < n; i++ {
		pr.spawn(heap.Pop(&pr.queue).(*PageNode))
	}
}
