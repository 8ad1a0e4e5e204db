// Copyright 2026 The SnapGrid Authors
// SPDX-License-Identifier: Apache-2.0

package board

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/gustavscirulis/snapgrid-sub001/lib/clock"
	"github.com/gustavscirulis/snapgrid-sub001/lib/failure"
	"github.com/gustavscirulis/snapgrid-sub001/lib/storagedir"
)

// recordVersion is the record file format version. LoadAll reports
// records with any other version as failures instead of guessing.
const recordVersion = 1

const (
	recordExtension = ".cbor"
	tempPattern     = ".tmp-*"
	tempPrefix      = ".tmp-"
	lockFileName    = ".lock"
	fileMode        = 0o600
)

// errRootLocked is returned by lockFile when another Store holds the root.
var errRootLocked = errors.New("storage root is locked by another process")

// maxIDAttempts bounds id regeneration when a fresh id collides with
// an existing record. With random UUIDs the first attempt succeeds;
// a loop that keeps colliding means the id source is broken.
const maxIDAttempts = 8

// Options configures Open.
type Options struct {
	// Root is the storage root. It must already exist with its images
	// and records subdirectories (storagedir.Resolver.Ensure).
	Root string

	// Clock stamps created_at. Defaults to clock.Real().
	Clock clock.Clock

	// Logger defaults to slog.Default().
	Logger *slog.Logger

	// NewID generates record ids. Defaults to random UUIDs. Tests
	// override it to force collisions and to name an id before it is
	// assigned.
	NewID func() string
}

// Store is the record store. Its methods are safe for concurrent use.
type Store struct {
	root       string
	imagesDir  string
	recordsDir string
	clock      clock.Clock
	logger     *slog.Logger
	newID      func() string
	locks      *idLocks
	lock       *os.File
}

// Open locks the storage root, removes crash leftovers, and returns a
// ready Store. Close releases the lock.
func Open(options Options) (*Store, error) {
	if options.Root == "" {
		return nil, fmt.Errorf("board: Root is required")
	}
	if options.Clock == nil {
		options.Clock = clock.Real()
	}
	if options.Logger == nil {
		options.Logger = slog.Default()
	}
	if options.NewID == nil {
		options.NewID = uuid.NewString
	}

	store := &Store{
		root:       filepath.Clean(options.Root),
		imagesDir:  filepath.Join(options.Root, storagedir.ImagesDir),
		recordsDir: filepath.Join(options.Root, storagedir.RecordsDir),
		clock:      options.Clock,
		logger:     options.Logger,
		newID:      options.NewID,
		locks:      newIDLocks(),
	}

	for _, dir := range []string{store.imagesDir, store.recordsDir} {
		info, err := os.Stat(dir)
		if err != nil {
			return nil, failure.IO("opening board: %w", err)
		}
		if !info.IsDir() {
			return nil, failure.IO("opening board: %s is not a directory", dir)
		}
	}

	lock, err := os.OpenFile(filepath.Join(store.root, lockFileName), os.O_CREATE|os.O_RDWR, fileMode)
	if err != nil {
		return nil, failure.IO("opening board lock: %w", err)
	}
	if err := lockFile(lock); err != nil {
		lock.Close()
		return nil, failure.IO("locking board %s: %w", store.root, err)
	}
	store.lock = lock

	if err := store.sweep(); err != nil {
		store.Close()
		return nil, err
	}
	return store, nil
}

// Close releases the root lock. The Store must not be used afterwards.
func (s *Store) Close() error {
	if s.lock == nil {
		return nil
	}
	lock := s.lock
	s.lock = nil
	unlockErr := unlockFile(lock)
	closeErr := lock.Close()
	return errors.Join(unlockErr, closeErr)
}

// Root returns the storage root the store was opened on.
func (s *Store) Root() string {
	return s.root
}

// sweep removes what an interrupted save can leave behind: temp files,
// and payloads whose record file was never renamed into place.
func (s *Store) sweep() error {
	var temps, orphans int

	for _, dir := range []string{s.recordsDir, s.imagesDir} {
		entries, err := os.ReadDir(dir)
		if err != nil {
			return failure.IO("scanning %s: %w", dir, err)
		}
		for _, entry := range entries {
			if entry.IsDir() || !strings.HasPrefix(entry.Name(), tempPrefix) {
				continue
			}
			if err := os.Remove(filepath.Join(dir, entry.Name())); err != nil && !os.IsNotExist(err) {
				return failure.IO("removing interrupted write %s: %w", entry.Name(), err)
			}
			temps++
		}
	}

	entries, err := os.ReadDir(s.imagesDir)
	if err != nil {
		return failure.IO("scanning %s: %w", s.imagesDir, err)
	}
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		id := strings.TrimSuffix(name, filepath.Ext(name))
		if !validID(id) {
			continue
		}
		if _, err := os.Stat(s.recordPath(id)); err == nil || !os.IsNotExist(err) {
			continue
		}
		if err := os.Remove(filepath.Join(s.imagesDir, name)); err != nil && !os.IsNotExist(err) {
			return failure.IO("removing orphaned payload %s: %w", name, err)
		}
		orphans++
	}

	if temps > 0 || orphans > 0 {
		s.logger.Info("removed interrupted writes",
			"root", s.root,
			"temp_files", temps,
			"orphaned_payloads", orphans,
		)
	}
	return nil
}

// validID reports whether id is a canonical UUID string. Canonical
// form (lowercase, hyphenated) means one id has exactly one spelling
// and therefore exactly one file name.
func validID(id string) bool {
	parsed, err := uuid.Parse(id)
	return err == nil && parsed.String() == id
}

func checkID(id string) error {
	if !validID(id) {
		return failure.Validation("invalid record id %q", id)
	}
	return nil
}

func (s *Store) recordPath(id string) string {
	return filepath.Join(s.recordsDir, id+recordExtension)
}

// payloadPattern matches any payload for id regardless of extension.
// id is a validated UUID and contains no glob metacharacters.
func (s *Store) payloadPattern(id string) string {
	return filepath.Join(s.imagesDir, id+".*")
}

// absolute converts a root-relative payload location to a path.
func (s *Store) absolute(relative string) string {
	return filepath.Join(s.root, filepath.FromSlash(relative))
}
