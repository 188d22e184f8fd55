package crawler

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"time"

	"github.com/gocolly/colly/v2/storage"
	bolt "go.etcd.io/bbolt"
)

var (
	visitedBucket   = []byte("visited")
	cookiesBucket   = []byte("cookies")
	downloadsBucket = []byte("downloads")
)

// BoltDBStorage persists collector state between runs. It serves as the
// colly storage (visited requests and cookies) and as the download ledger.
type BoltDBStorage struct {
	DBPath string
	db     *bolt.DB
	mu     sync.RWMutex
}

// Init opens the database. Calling it again on an open storage is a no-op.
func (s *BoltDBStorage) Init() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.db != nil {
		return nil
	}

	if err := os.MkdirAll(filepath.Dir(s.DBPath), 0755); err != nil {
		return fmt.Errorf("failed to create directory for BoltDB: %w", err)
	}

	db, err := bolt.Open(s.DBPath, 0600, &bolt.Options{Timeout: 5 * time.Second})
	if err != nil {
		return fmt.Errorf("failed to open BoltDB: %w", err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		for _, name := range [][]byte{visitedBucket, cookiesBucket, downloadsBucket} {
			if _, err := tx.CreateBucketIfNotExists(name); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		db.Close()
		return fmt.Errorf("failed to create buckets: %w", err)
	}

	s.db = db
	return nil
}

// Visited implements storage.Storage interface
func (s *BoltDBStorage) Visited(requestID uint64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(visitedBucket).Put(requestKey(requestID), []byte("1"))
	})
}

// IsVisited implements storage.Storage interface
func (s *BoltDBStorage) IsVisited(requestID uint64) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var visited bool
	err := s.db.View(func(tx *bolt.Tx) error {
		visited = tx.Bucket(visitedBucket).Get(requestKey(requestID)) != nil
		return nil
	})
	return visited, err
}

// Cookies implements storage.Storage interface
func (s *BoltDBStorage) Cookies(u *url.URL) string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var cookies string
	s.db.View(func(tx *bolt.Tx) error {
		if v := tx.Bucket(cookiesBucket).Get([]byte(u.Host)); v != nil {
			cookies = string(v)
		}
		return nil
	})
	return cookies
}

// SetCookies implements storage.Storage interface
func (s *BoltDBStorage) SetCookies(u *url.URL, cookies string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(cookiesBucket).Put([]byte(u.Host), []byte(cookies))
	})
}

// ResetVisited forgets the visited requests of earlier runs so the index is
// traversed again. Cookies and the download ledger are kept.
func (s *BoltDBStorage) ResetVisited() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.db.Update(func(tx *bolt.Tx) error {
		if tx.Bucket(visitedBucket) != nil {
			if err := tx.DeleteBucket(visitedBucket); err != nil {
				return err
			}
		}
		_, err := tx.CreateBucket(visitedBucket)
		return err
	})
}

// MarkDownloaded records that rawURL was saved to path.
func (s *BoltDBStorage) MarkDownloaded(rawURL, path string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(downloadsBucket).Put([]byte(rawURL), []byte(path))
	})
}

// IsDownloaded reports whether rawURL was downloaded by an earlier run.
func (s *BoltDBStorage) IsDownloaded(rawURL string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var done bool
	err := s.db.View(func(tx *bolt.Tx) error {
		done = tx.Bucket(downloadsBucket).Get([]byte(rawURL)) != nil
		return nil
	})
	return done, err
}

// Close closes the BoltDB database
func (s *BoltDBStorage) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	return err
}

func requestKey(requestID uint64) []byte {
	return []byte(strconv.FormatUint(requestID, 10))
}

var _ storage.Storage = (*BoltDBStorage)(nil)
