// Package nvs implements MeshX's non-volatile key/value store, grounded on
// meshx_nvs.c and the teacher's pkg/persistence/sqlite store: a pure-Go
// SQLite-backed blob table standing in for the flash-partition NVS the
// original firmware drives through esp_nvs.c.
package nvs

import (
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/meshx-project/meshx/pkg/meshxerr"
	"github.com/meshx-project/meshx/pkg/platform"
)

const (
	keyProductID = "MESHX_PID"
	keyCompanyID = "MESHX_CID"

	elementKeyFormat = "MESHX_EL_%04x"
)

// Store is an open NVS handle. The zero value is not usable; construct one
// with Open.
type Store struct {
	db           *sql.DB
	stabilityTmr *platform.Timer
}

// Open opens (creating if absent) the SQLite-backed store at path and arms
// a stability timer: every Set restarts it, and it fires Commit after
// commitTimeout of quiet, mirroring meshx_nvs_open's MESHX_NVS_TIMER_PERIOD
// debounce. A commitTimeout of zero disables the timer; callers must call
// Commit explicitly.
func Open(path string, commitTimeout time.Duration) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("%w: open %s: %v", meshxerr.ErrPlatform, path, err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("%w: ping %s: %v", meshxerr.ErrPlatform, path, err)
	}

	s := &Store{db: db}
	if err := s.init(); err != nil {
		db.Close()
		return nil, err
	}

	if commitTimeout > 0 {
		s.stabilityTmr = platform.NewTimer("MESHX_COMMIT_TIMER", commitTimeout, false, func() {
			s.Commit()
		})
	}

	return s, nil
}

func (s *Store) init() error {
	const query = `
	CREATE TABLE IF NOT EXISTS nvs_entries (
		key   TEXT PRIMARY KEY,
		value BLOB NOT NULL
	);
	`
	if _, err := s.db.Exec(query); err != nil {
		return fmt.Errorf("%w: schema init: %v", meshxerr.ErrPlatform, err)
	}
	return nil
}

// SetProductInfo reconciles the stored company/product ID against (cid,
// pid): a mismatch or first-open erases the whole store before storing the
// new identity, mirroring meshx_nvs_open's erase-and-reinit path around
// meshx_nvs_erase_prod_init.
func (s *Store) SetProductInfo(cid, pid uint16) error {
	storedCID, haveCID, err := s.getUint16(keyCompanyID)
	if err != nil {
		return err
	}
	storedPID, havePID, err := s.getUint16(keyProductID)
	if err != nil {
		return err
	}

	if haveCID && havePID && storedCID == cid && storedPID == pid {
		return nil
	}
	if err := s.Erase(); err != nil {
		return err
	}
	if err := s.setUint16(keyCompanyID, cid); err != nil {
		return err
	}
	return s.setUint16(keyProductID, pid)
}

// ProductInfo returns the currently-stored company and product IDs.
func (s *Store) ProductInfo() (cid, pid uint16, err error) {
	cid, _, err = s.getUint16(keyCompanyID)
	if err != nil {
		return 0, 0, err
	}
	pid, _, err = s.getUint16(keyProductID)
	if err != nil {
		return 0, 0, err
	}
	return cid, pid, nil
}

// Get retrieves the blob stored under key. The second return value is false
// if no value is stored.
func (s *Store) Get(key string) ([]byte, bool, error) {
	var value []byte
	err := s.db.QueryRow(`SELECT value FROM nvs_entries WHERE key = ?`, key).Scan(&value)
	if err == sql.ErrNoRows {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("%w: get %s: %v", meshxerr.ErrPlatform, key, err)
	}
	return value, true, nil
}

// Set stores blob under key, overwriting any prior value, and restarts the
// stability timer if one is armed.
func (s *Store) Set(key string, blob []byte) error {
	const query = `INSERT INTO nvs_entries (key, value) VALUES (?, ?) ON CONFLICT(key) DO UPDATE SET value = excluded.value`
	if _, err := s.db.Exec(query, key, blob); err != nil {
		return fmt.Errorf("%w: set %s: %v", meshxerr.ErrPlatform, key, err)
	}
	if s.stabilityTmr != nil {
		s.stabilityTmr.Restart()
	}
	return nil
}

// Remove deletes key, mirroring meshx_nvs_remove.
func (s *Store) Remove(key string) error {
	if _, err := s.db.Exec(`DELETE FROM nvs_entries WHERE key = ?`, key); err != nil {
		return fmt.Errorf("%w: remove %s: %v", meshxerr.ErrPlatform, key, err)
	}
	return nil
}

// ElementState retrieves the persisted state blob for elementID, per
// meshx_nvs_elemnt_ctx_get.
func (s *Store) ElementState(elementID uint16) ([]byte, bool, error) {
	return s.Get(elementKey(elementID))
}

// SetElementState persists the state blob for elementID, per
// meshx_nvs_elemnt_ctx_set.
func (s *Store) SetElementState(elementID uint16, blob []byte) error {
	return s.Set(elementKey(elementID), blob)
}

func elementKey(elementID uint16) string {
	return fmt.Sprintf(elementKeyFormat, elementID)
}

// Commit forces a flush of pending writes to persistent storage, per
// meshx_nvs_commit. Every Set/Remove above already auto-commits its own
// SQL transaction, so this only issues a WAL checkpoint pragma rather than
// replaying a batched write queue; Open does not switch the database to WAL
// journal mode, in which case the checkpoint has nothing to do.
func (s *Store) Commit() error {
	if _, err := s.db.Exec(`PRAGMA wal_checkpoint(TRUNCATE)`); err != nil {
		return fmt.Errorf("%w: commit: %v", meshxerr.ErrPlatform, err)
	}
	return nil
}

// Erase clears every key/value pair, per meshx_nvs_erase. Callers that want
// to keep product identity must re-set it afterward, same as
// meshx_nvs_erase_prod_init does around meshx_nvs_erase.
func (s *Store) Erase() error {
	if _, err := s.db.Exec(`DELETE FROM nvs_entries`); err != nil {
		return fmt.Errorf("%w: erase: %v", meshxerr.ErrPlatform, err)
	}
	return nil
}

// Close stops the stability timer (if any) and releases the underlying
// database handle.
func (s *Store) Close() error {
	if s.stabilityTmr != nil {
		s.stabilityTmr.Stop()
	}
	if err := s.db.Close(); err != nil {
		return fmt.Errorf("%w: close: %v", meshxerr.ErrPlatform, err)
	}
	return nil
}

func (s *Store) getUint16(key string) (uint16, bool, error) {
	blob, ok, err := s.Get(key)
	if err != nil || !ok || len(blob) < 2 {
		return 0, false, err
	}
	return uint16(blob[0]) | uint16(blob[1])<<8, true, nil
}

func (s *Store) setUint16(key string, v uint16) error {
	return s.Set(key, []byte{byte(v), byte(v >> 8)})
}
