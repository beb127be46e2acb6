/*
Package dnscache implements a DialContext function that caches DNS
resolutions.
*/
package dnscache

import (
	"context"
	"net"
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru"
)

// DialContext wraps wrappedDial with an LRU cache of resolved addresses,
// keyed by network+address. Failures are cached too, so a host that is
// down does not incur a fresh DNS lookup on every retrying fetch.
//
// If wrappedDial is nil, a zero-value net.Dialer is used.
func DialContext(wrappedDial func(ctx context.Context, network, addr string) (net.Conn, error), maxEntries int) (func(ctx context.Context, network, addr string) (net.Conn, error), error) {
	if wrappedDial == nil {
		d := &net.Dialer{}
		wrappedDial = d.DialContext
	}
	cache, err := lru.New(maxEntries)
	if err != nil {
		return nil, err
	}
	c := &dnsCache{wrappedDial: wrappedDial, cache: cache}
	return c.cachingDial, nil
}

type dnsCache struct {
	wrappedDial func(ctx context.Context, network, addr string) (net.Conn, error)
	cache       *lru.Cache
	mu          sync.RWMutex
}

type hostrecord struct {
	ipaddr    string
	err       error
	lastQuery time.Time
}

// entryTTL bounds how long a resolved (or failed) lookup is trusted before
// a fresh DNS query is attempted again.
const entryTTL = 5 * time.Minute

func (c *dnsCache) cachingDial(ctx context.Context, network, addr string) (net.Conn, error) {
	key := network + addr
	c.mu.RLock()
	entry, ok := c.cacheGet(key)
	c.mu.RUnlock()

	if ok && time.Since(entry.lastQuery) < entryTTL {
		if entry.err != nil {
			return nil, entry.err
		}
		host, port, err := net.SplitHostPort(addr)
		if err != nil {
			return c.wrappedDial(ctx, network, addr)
		}
		_ = host
		return c.wrappedDial(ctx, network, net.JoinHostPort(entry.ipaddr, port))
	}

	host, port, err := net.SplitHostPort(addr)
	if err != nil {
		return c.wrappedDial(ctx, network, addr)
	}

	ips, resolveErr := net.DefaultResolver.LookupHost(ctx, host)
	rec := hostrecord{lastQuery: time.Now()}
	if resolveErr != nil || len(ips) == 0 {
		if resolveErr != nil {
			rec.err = resolveErr
		} else {
			rec.err = &net.DNSError{Err: "no addresses found", Name: host}
		}
		c.mu.Lock()
		c.cache.Add(key, rec)
		c.mu.Unlock()
		return c.wrappedDial(ctx, network, addr)
	}
	rec.ipaddr = ips[0]

	c.mu.Lock()
	c.cache.Add(key, rec)
	c.mu.Unlock()

	return c.wrappedDial(ctx, network, net.JoinHostPort(rec.ipaddr, port))
}

func (c *dnsCache) cacheGet(key string) (hostrecord, bool) {
	v, ok := c.cache.Get(key)
	if !ok {
		return hostrecord{}, false
	}
	return v.(hostrecord), true
}
