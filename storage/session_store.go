package storage

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"zenbox/utils"

	"go.etcd.io/bbolt"
)

// SessionStore persists Fiber sessions in bbolt. Values are sealed with
// AES-GCM and prefixed with their expiry; it implements fiber.Storage.
type SessionStore struct {
	db     *bbolt.DB
	bucket []byte
	gcm    cipher.AEAD
	now    func() time.Time

	stop chan struct{}
	once sync.Once
}

// NewSessionStore wraps db. key must be 16, 24 or 32 bytes. Expired
// entries are swept every gcInterval.
func NewSessionStore(db *bbolt.DB, key []byte, gcInterval time.Duration) (*SessionStore, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("session key: %w", err)
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, err
	}

	s := &SessionStore{
		db:     db,
		bucket: SessionsBucket,
		gcm:    gcm,
		now:    time.Now,
		stop:   make(chan struct{}),
	}
	if gcInterval > 0 {
		go s.gcLoop(gcInterval)
	}
	return s, nil
}

// Get returns nil without error for missing, expired or unreadable entries
func (s *SessionStore) Get(key string) ([]byte, error) {
	if key == "" {
		return nil, nil
	}

	var raw []byte
	err := s.db.View(func(tx *bbolt.Tx) error {
		if v := tx.Bucket(s.bucket).Get([]byte(key)); v != nil {
			raw = append([]byte(nil), v...)
		}
		return nil
	})
	if err != nil || raw == nil {
		return nil, err
	}

	expiry, sealed, ok := splitEntry(raw)
	if !ok || s.expired(expiry) {
		return nil, nil
	}

	value, err := s.open(sealed)
	if err != nil {
		// Sealed under a previous secret
		utils.Log.Debug("Discarding unreadable session entry: %v", err)
		return nil, nil
	}
	return value, nil
}

// Set stores val for exp; zero exp never expires
func (s *SessionStore) Set(key string, val []byte, exp time.Duration) error {
	if key == "" || len(val) == 0 {
		return nil
	}

	sealed, err := s.seal(val)
	if err != nil {
		return err
	}

	var expiry int64
	if exp > 0 {
		expiry = s.now().Add(exp).UnixNano()
	}
	entry := make([]byte, 8+len(sealed))
	binary.BigEndian.PutUint64(entry, uint64(expiry))
	copy(entry[8:], sealed)

	return s.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(s.bucket).Put([]byte(key), entry)
	})
}

func (s *SessionStore) Delete(key string) error {
	if key == "" {
		return nil
	}
	return s.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(s.bucket).Delete([]byte(key))
	})
}

// Reset removes every session
func (s *SessionStore) Reset() error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		if err := tx.DeleteBucket(s.bucket); err != nil && !errors.Is(err, bbolt.ErrBucketNotFound) {
			return err
		}
		_, err := tx.CreateBucket(s.bucket)
		return err
	})
}

// Close stops the sweeper and closes the database
func (s *SessionStore) Close() error {
	s.once.Do(func() { close(s.stop) })
	return s.db.Close()
}

func (s *SessionStore) gcLoop(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if n, err := s.sweep(); err != nil {
				utils.Log.Warn("Session sweep failed: %v", err)
			} else if n > 0 {
				utils.Log.Debug("Swept %d expired sessions", n)
			}
		case <-s.stop:
			return
		}
	}
}

// sweep deletes expired entries and reports how many went
func (s *SessionStore) sweep() (int, error) {
	removed := 0
	err := s.db.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket(s.bucket)
		var stale [][]byte
		err := b.ForEach(func(k, v []byte) error {
			expiry, _, ok := splitEntry(v)
			if !ok || s.expired(expiry) {
				stale = append(stale, append([]byte(nil), k...))
			}
			return nil
		})
		if err != nil {
			return err
		}
		for _, k := range stale {
			if err := b.Delete(k); err != nil {
				return err
			}
		}
		removed = len(stale)
		return nil
	})
	return removed, err
}

func (s *SessionStore) expired(expiry int64) bool {
	return expiry != 0 && s.now().UnixNano() >= expiry
}

func splitEntry(raw []byte) (int64, []byte, bool) {
	if len(raw) < 8 {
		return 0, nil, false
	}
	return int64(binary.BigEndian.Uint64(raw[:8])), raw[8:], true
}

func (s *SessionStore) seal(plaintext []byte) ([]byte, error) {
	nonce := make([]byte, s.gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, err
	}
	return s.gcm.Seal(nonce, nonce, plaintext, nil), nil
}

func (s *SessionStore) open(sealed []byte) ([]byte, error) {
	nonceSize := s.gcm.NonceSize()
	if len(sealed) < nonceSize {
		return nil, errors.New("ciphertext too short")
	}
	nonce, ciphertext := sealed[:nonceSize], sealed[nonceSize:]
	return s.gcm.Open(nil, nonce, ciphertext, nil)
}
