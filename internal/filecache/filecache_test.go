package filecache

import (
	"testing"
)

type record struct {
	Value string
	Count int
}

func TestSetThenGetRoundTrips(t *testing.T) {
	store, err := Open(t.TempDir())
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}

	store.Set("http://a.example/", record{Value: "hello", Count: 3})

	var got record
	if !store.Get("http://a.example/", &got) {
		t.Fatal("expected a hit after Set")
	}
	if got.Value != "hello" || got.Count != 3 {
		t.Errorf("got %+v, want {hello 3}", got)
	}
}

func TestGetMissingKeyIsAMiss(t *testing.T) {
	store, err := Open(t.TempDir())
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}

	var got record
	if store.Get("http://never-set.example/", &got) {
		t.Error("expected a miss for a key that was never set")
	}
}

func TestSetOverwritesPreviousValue(t *testing.T) {
	store, err := Open(t.TempDir())
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}

	store.Set("http://a.example/", record{Value: "first"})
	store.Set("http://a.example/", record{Value: "second"})

	var got record
	if !store.Get("http://a.example/", &got) {
		t.Fatal("expected a hit")
	}
	if got.Value != "second" {
		t.Errorf("expected the later Set to win, got %q", got.Value)
	}
}

func TestOpenCreatesMissingDirectory(t *testing.T) {
	dir := t.TempDir() + "/nested/cache"
	if _, err := Open(dir); err != nil {
		t.Fatalf("expected Open to create missing directories, got %v", err)
	}
}
