package webgrep

import "testing"

func TestNewChildNodeIncrementsDepth(t *testing.T) {
	root := NewRootNode("http://a.example/", HTMLBody(""))
	child := NewChildNode(root, "http://a.example/child", HTMLBody(""))
	if child.Depth != 1 {
		t.Errorf("expected depth 1, got %d", child.Depth)
	}
	if child.Parent != root {
		t.Error("expected child.Parent to point at root")
	}
}

func TestAncestorURLsIncludesSelf(t *testing.T) {
	root := NewRootNode("http://a.example/", HTMLBody(""))
	child := NewChildNode(root, "http://a.example/child", HTMLBody(""))
	grand := NewChildNode(child, "http://a.example/grand", HTMLBody(""))

	ancestors := grand.AncestorURLs()
	for _, u := range []string{root.URL, child.URL, grand.URL} {
		if _, ok := ancestors[u]; !ok {
			t.Errorf("expected %q in ancestor set", u)
		}
	}
	if len(ancestors) != 3 {
		t.Errorf("expected 3 ancestors, got %d", len(ancestors))
	}
}

func TestPathFromRootAndDisplayPath(t *testing.T) {
	root := NewRootNode("http://a.example/", HTMLBody(""))
	child := NewChildNode(root, "http://a.example/child", HTMLBody(""))

	path := child.PathFromRoot()
	want := []string{"http://a.example/", "http://a.example/child"}
	if len(path) != len(want) || path[0] != want[0] || path[1] != want[1] {
		t.Errorf("got %v, want %v", path, want)
	}

	if got := child.DisplayPath(); got != "http://a.example/ > http://a.example/child" {
		t.Errorf("unexpected display path: %q", got)
	}
}

func TestPageNodeLessOrdersByDepthThenURL(t *testing.T) {
	shallow := NewRootNode("http://z.example/", HTMLBody(""))
	deepA := NewChildNode(shallow, "http://a.example/", HTMLBody(""))
	deepB := NewChildNode(shallow, "http://b.example/", HTMLBody(""))

	if !pageNodeLess(shallow, deepA) {
		t.Error("expected shallower node to sort first")
	}
	if !pageNodeLess(deepA, deepB) {
		t.Error("expected URL tie-break to order a.example before b.example")
	}
}
