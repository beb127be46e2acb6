/*
Package filecache is the on-disk backing store for webgrep's content cache.

Keys are hashed into filenames under a directory, each file holding a small
gob-encoded record. Entries are permanent: no TTL, no eviction, since a
recorded FetchOutcome, success or terminal error, is never retried within or
across runs.
*/
package filecache

import (
	"bytes"
	"crypto/sha256"
	"encoding/gob"
	"encoding/hex"
	"os"
	"path/filepath"

	"github.com/webgrep/webgrep/internal/glog"
)

// Store is a durable key/value mapping from URL to an opaque gob-encoded
// record. It never returns an error from Get (a damaged or missing entry is
// simply a miss) and Set failures are logged, never propagated.
type Store struct {
	dir string
}

// Open ensures dir exists and returns a Store rooted there. Returns an
// error only if the directory cannot be created, since that is treated as
// a fatal cache-initialization failure by the caller.
func Open(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &Store{dir: dir}, nil
}

// Get looks up the record stored for key. ok is false if there is no entry
// or the entry could not be decoded.
func (s *Store) Get(key string, out any) (ok bool) {
	data, err := os.ReadFile(s.path(key))
	if err != nil {
		return false
	}
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(out); err != nil {
		glog.Debug("filecache: corrupt entry for %s: %v", key, err)
		return false
	}
	return true
}

// Set persists value under key. Write failures are logged and swallowed;
// they must never abort the crawl.
func (s *Store) Set(key string, value any) {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(value); err != nil {
		glog.Error("filecache: failed to encode entry for %s: %v", key, err)
		return
	}

	tmp := s.path(key) + ".tmp"
	if err := os.WriteFile(tmp, buf.Bytes(), 0o644); err != nil {
		glog.Error("filecache: failed to write entry for %s: %v", key, err)
		return
	}
	if err := os.Rename(tmp, s.path(key)); err != nil {
		glog.Error("filecache: failed to commit entry for %s: %v", key, err)
		_ = os.Remove(tmp)
	}
}

func (s *Store) path(key string) string {
	sum := sha256.Sum256([]byte(key))
	return filepath.Join(s.dir, hex.EncodeToString(sum[:]))
}
