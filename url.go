package webgrep

import (
	"net"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/purell"
)

// NormalizeURL parses ref and returns its normalized, absolute form.
// Normalization is delegated to purell so equality comparisons between
// URLs can be done byte-exact on the returned string.
func NormalizeURL(ref string) (string, error) {
	u, err := url.Parse(ref)
	if err != nil {
		return "", err
	}
	return normalize(u), nil
}

// ResolveLink resolves href against the URL that contained it and returns
// the normalized absolute form.
func ResolveLink(base, href string) (string, error) {
	baseURL, err := url.Parse(base)
	if err != nil {
		return "", err
	}
	ref, err := url.Parse(href)
	if err != nil {
		return "", err
	}
	resolved := baseURL.ResolveReference(ref)
	return normalize(resolved), nil
}

// normalize returns u's normalized string form. purell.NormalizeURL operates
// on an internal copy of u and hands back the result rather than mutating
// the argument, so the returned string (not u.String() afterward) is what
// matters here.
func normalize(u *url.URL) string {
	return purell.NormalizeURL(u, purell.FlagsSafe|purell.FlagRemoveFragment|purell.FlagRemoveDuplicateSlashes)
}

// HostKey computes the rate-limiting bucket for rawurl.
//
// For domain hosts this keeps the last three dot-separated labels (or all
// of them if there are fewer than three), so a.b.example.com and
// c.b.example.com share the bucket b.example.com, while hosts of three
// labels or fewer, such as www.example.com and api.example.com, each get
// their own bucket. IPv4/IPv6 literals use the literal itself;
// hostless URLs (e.g. "file:///x") use "".
func HostKey(rawurl string) string {
	u, err := url.Parse(rawurl)
	if err != nil {
		return ""
	}
	host := u.Hostname()
	if host == "" {
		return ""
	}
	if net.ParseIP(host) != nil {
		return host
	}

	labels := strings.Split(host, ".")
	if len(labels) <= 3 {
		return host
	}
	return strings.Join(labels[len(labels)-3:], ".")
}
