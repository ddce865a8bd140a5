// Package securestore is an encrypted key-value area on top of a local sqlite
// file. Values are sealed with AES-256-GCM under a key derived from a device
// secret; entry names are stored as HMAC digests.
package securestore

import (
	"context"
	"crypto/aes"
	"crypto/cipher"
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"database/sql"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
	"golang.org/x/crypto/argon2"
)

var (
	// ErrNotFound is returned by Get for a key that was never set or was deleted.
	ErrNotFound = errors.New("securestore: key not found")
	// ErrCorrupt is returned by Get when a stored value cannot be decrypted.
	ErrCorrupt = errors.New("securestore: value is corrupt")
)

const (
	// saltKey holds the KDF salt. It cannot collide with hashed entry names,
	// which are hex digests.
	saltKey  = "__salt__"
	saltSize = 16

	argonTime    = 1
	argonMemory  = 64 * 1024
	argonThreads = 4
)

// Store is safe for concurrent use; sqlite serialises the writes.
type Store struct {
	db     *sqlx.DB
	aead   cipher.AEAD
	macKey []byte
}

// Open connects to the sqlite database at dsn and unlocks it with secret.
func Open(ctx context.Context, dsn string, secret []byte) (*Store, error) {
	db, err := sqlx.Connect("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	s, err := New(ctx, db, secret)
	if err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// New prepares the schema in db and derives the store keys from secret and
// the persisted salt, creating the salt on first use.
func New(ctx context.Context, db *sqlx.DB, secret []byte) (*Store, error) {
	if len(secret) == 0 {
		return nil, errors.New("securestore: empty device secret")
	}

	if _, err := db.ExecContext(ctx, `create table if not exists secure_prefs(
		key   text not null primary key,
		value text not null
	)`); err != nil {
		return nil, fmt.Errorf("creating secure_prefs table: %w", err)
	}

	salt, err := loadOrCreateSalt(ctx, db)
	if err != nil {
		return nil, err
	}

	material := argon2.IDKey(secret, salt, argonTime, argonMemory, argonThreads, 64)

	block, err := aes.NewCipher(material[:32])
	if err != nil {
		return nil, err
	}
	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, err
	}

	return &Store{db: db, aead: aead, macKey: material[32:]}, nil
}

func loadOrCreateSalt(ctx context.Context, db *sqlx.DB) ([]byte, error) {
	var encoded string
	err := db.GetContext(ctx, &encoded, `select value from secure_prefs where key = ?`, saltKey)
	if err == nil {
		salt, err := base64.StdEncoding.DecodeString(encoded)
		if err != nil {
			return nil, fmt.Errorf("decoding salt: %w", err)
		}
		return salt, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("reading salt: %w", err)
	}

	salt := make([]byte, saltSize)
	if _, err := rand.Read(salt); err != nil {
		return nil, err
	}
	// a concurrent opener may have won; re-read whatever is stored
	if _, err := db.ExecContext(ctx,
		`insert into secure_prefs (key, value) values (?, ?) on conflict(key) do nothing`,
		saltKey, base64.StdEncoding.EncodeToString(salt)); err != nil {
		return nil, fmt.Errorf("storing salt: %w", err)
	}
	if err := db.GetContext(ctx, &encoded, `select value from secure_prefs where key = ?`, saltKey); err != nil {
		return nil, fmt.Errorf("reading salt: %w", err)
	}
	return base64.StdEncoding.DecodeString(encoded)
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) hashKey(key string) string {
	mac := hmac.New(sha256.New, s.macKey)
	mac.Write([]byte(key))
	return hex.EncodeToString(mac.Sum(nil))
}

// Get returns the plaintext stored under key.
func (s *Store) Get(ctx context.Context, key string) (string, error) {
	hashed := s.hashKey(key)

	var stored string
	err := s.db.GetContext(ctx, &stored, `select value from secure_prefs where key = ?`, hashed)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("reading %s: %w", key, err)
	}

	plaintext, err := s.open(hashed, stored)
	if err != nil {
		return "", fmt.Errorf("%w: %s", ErrCorrupt, key)
	}
	return string(plaintext), nil
}

// Set stores value under key, replacing any previous value.
func (s *Store) Set(ctx context.Context, key, value string) error {
	hashed := s.hashKey(key)
	sealed, err := s.seal(hashed, []byte(value))
	if err != nil {
		return err
	}

	_, err = s.db.ExecContext(ctx, `
		insert into secure_prefs (key, value) values (?, ?)
		on conflict(key) do update set value = excluded.value
	`, hashed, sealed)
	if err != nil {
		return fmt.Errorf("writing %s: %w", key, err)
	}
	return nil
}

// Delete removes key. Deleting a missing key is not an error.
func (s *Store) Delete(ctx context.Context, key string) error {
	if _, err := s.db.ExecContext(ctx, `delete from secure_prefs where key = ?`, s.hashKey(key)); err != nil {
		return fmt.Errorf("deleting %s: %w", key, err)
	}
	return nil
}

// seal encrypts plaintext bound to the hashed key name, encoded as
// base64(nonce) "." base64(ciphertext).
func (s *Store) seal(hashedKey string, plaintext []byte) (string, error) {
	nonce := make([]byte, s.aead.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return "", err
	}
	ciphertext := s.aead.Seal(nil, nonce, plaintext, []byte(hashedKey))
	return base64.StdEncoding.EncodeToString(nonce) + "." + base64.StdEncoding.EncodeToString(ciphertext), nil
}

func (s *Store) open(hashedKey, stored string) ([]byte, error) {
	noncePart, ctPart, ok := strings.Cut(stored, ".")
	if !ok {
		return nil, errors.New("malformed value")
	}
	nonce, err := base64.StdEncoding.DecodeString(noncePart)
	if err != nil {
		return nil, err
	}
	if len(nonce) != s.aead.NonceSize() {
		return nil, errors.New("bad nonce size")
	}
	ciphertext, err := base64.StdEncoding.DecodeString(ctPart)
	if err != nil {
		return nil, err
	}
	return s.aead.Open(nil, nonce, ciphertext, []byte(hashedKey))
}
