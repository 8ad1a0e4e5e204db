// Copyright 2026 The SnapGrid Authors
// SPDX-License-Identifier: Apache-2.0

package board

import (
	"errors"
	"fmt"
	"os"
	"path"
	"sort"
	"strings"

	"github.com/gustavscirulis/snapgrid-sub001/lib/codec"
	"github.com/gustavscirulis/snapgrid-sub001/lib/failure"
	"github.com/gustavscirulis/snapgrid-sub001/lib/storagedir"
)

// Failure names one record that LoadAll skipped.
type Failure struct {
	ID      string `json:"id"`
	Message string `json:"message"`
}

// LoadResult is the outcome of LoadAll: every readable record, in
// creation order, and every record that could not be read.
type LoadResult struct {
	Records  []Record  `json:"records"`
	Failures []Failure `json:"failures,omitempty"`
}

// Err returns a *PartialLoadError if any record failed, nil otherwise.
func (r *LoadResult) Err() error {
	if len(r.Failures) == 0 {
		return nil
	}
	return &PartialLoadError{Failures: r.Failures}
}

// PartialLoadError reports the records a load skipped. It carries the
// partial_load failure category.
type PartialLoadError struct {
	Failures []Failure
}

func (e *PartialLoadError) Error() string {
	ids := make([]string, len(e.Failures))
	for i, f := range e.Failures {
		ids[i] = f.ID
	}
	return fmt.Sprintf("%d record(s) could not be loaded: %s", len(e.Failures), strings.Join(ids, ", "))
}

// Unwrap lets failure.CategoryOf classify the error as partial_load.
func (e *PartialLoadError) Unwrap() error {
	return &failure.Error{Category: failure.CategoryPartialLoad, Err: errors.New("partial load")}
}

// LoadAll reads every record on the board, ordered by creation time
// and then by id. A record that cannot be decoded, or whose payload is
// missing or has the wrong size, is skipped and listed in Failures.
// Only an unreadable records directory fails the call.
func (s *Store) LoadAll() (*LoadResult, error) {
	entries, err := os.ReadDir(s.recordsDir)
	if err != nil {
		return nil, failure.IO("reading %s: %w", s.recordsDir, err)
	}

	result := &LoadResult{Records: []Record{}}
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || strings.HasPrefix(name, ".") || !strings.HasSuffix(name, recordExtension) {
			continue
		}
		id := strings.TrimSuffix(name, recordExtension)
		if !validID(id) {
			result.Failures = append(result.Failures, Failure{ID: id, Message: "record file name is not a valid id"})
			continue
		}

		record, err := s.loadOne(id)
		if failure.Is(err, failure.CategoryNotFound) {
			// Deleted between ReadDir and the read.
			continue
		}
		if err != nil {
			s.logger.Warn("skipping unreadable record", "id", id, "error", err)
			result.Failures = append(result.Failures, Failure{ID: id, Message: err.Error()})
			continue
		}
		result.Records = append(result.Records, *record)
	}

	sort.SliceStable(result.Records, func(i, j int) bool {
		a, b := &result.Records[i], &result.Records[j]
		if !a.CreatedAt().Equal(b.CreatedAt()) {
			return a.CreatedAt().Before(b.CreatedAt())
		}
		return a.ID() < b.ID()
	})
	sort.Slice(result.Failures, func(i, j int) bool {
		return result.Failures[i].ID < result.Failures[j].ID
	})
	return result, nil
}

func (s *Store) loadOne(id string) (*Record, error) {
	unlock := s.locks.lock(id)
	defer unlock()

	record, err := s.readRecord(id)
	if err != nil {
		return nil, err
	}
	if record.Kind == KindImage {
		if err := s.checkPayload(record.Image); err != nil {
			return nil, err
		}
	}
	s.resolvePaths(record)
	return record, nil
}

// Get returns one record.
func (s *Store) Get(id string) (*Record, error) {
	if err := checkID(id); err != nil {
		return nil, err
	}

	unlock := s.locks.lock(id)
	defer unlock()

	record, err := s.readRecord(id)
	if err != nil {
		return nil, err
	}
	s.resolvePaths(record)
	return record, nil
}

// ReadImage returns the payload of an image record after checking it
// against the stored digest. A payload modified behind the store's back
// is an I/O failure, not silently returned.
func (s *Store) ReadImage(id string) ([]byte, *ImageRecord, error) {
	if err := checkID(id); err != nil {
		return nil, nil, err
	}

	unlock := s.locks.lock(id)
	defer unlock()

	record, err := s.readRecord(id)
	if err != nil {
		return nil, nil, err
	}
	if record.Kind != KindImage {
		return nil, nil, failure.Validation("record %s is a %s, not an image", id, record.Kind)
	}
	image := record.Image

	payload, err := os.ReadFile(s.absolute(image.File))
	if err != nil {
		return nil, nil, failure.IO("reading payload %s: %w", image.File, err)
	}
	if digest := digestPayload(payload); digest != image.Digest {
		return nil, nil, failure.IO("payload %s does not match its recorded digest", image.File)
	}
	image.Path = s.absolute(image.File)
	return payload, image, nil
}

// readRecord decodes records/<id>.cbor and checks that it is
// internally consistent. The caller holds the id lock.
func (s *Store) readRecord(id string) (*Record, error) {
	data, err := os.ReadFile(s.recordPath(id))
	if errors.Is(err, os.ErrNotExist) {
		return nil, failure.NotFound("record %s not found", id)
	}
	if err != nil {
		return nil, failure.IO("reading record %s: %w", id, err)
	}

	var stored recordFile
	if err := codec.Unmarshal(data, &stored); err != nil {
		return nil, failure.IO("decoding record %s: %w", id, err)
	}
	if stored.Version != recordVersion {
		return nil, failure.IO("record %s has unsupported version %d", id, stored.Version)
	}

	record := &stored.Record
	switch record.Kind {
	case KindImage:
		if record.Image == nil || record.URLCard != nil {
			return nil, failure.IO("record %s: kind image without an image body", id)
		}
		if err := s.checkPayloadLocation(id, record.Image.File); err != nil {
			return nil, err
		}
	case KindURLCard:
		if record.URLCard == nil || record.Image != nil {
			return nil, failure.IO("record %s: kind url_card without a url_card body", id)
		}
	default:
		return nil, failure.IO("record %s has unknown kind %q", id, record.Kind)
	}
	if record.ID() != id {
		return nil, failure.IO("record file %s names id %q", id, record.ID())
	}
	return record, nil
}

// checkPayloadLocation rejects a record whose payload file is anything
// other than images/<id>.<ext>. A tampered record must not be able to
// point ReadImage at another file.
func (s *Store) checkPayloadLocation(id, file string) error {
	dir, name := path.Split(file)
	if dir != storagedir.ImagesDir+"/" || strings.TrimSuffix(name, path.Ext(name)) != id || path.Ext(name) == "" {
		return failure.IO("record %s has payload location %q outside images/", id, file)
	}
	return nil
}

func (s *Store) checkPayload(image *ImageRecord) error {
	info, err := os.Stat(s.absolute(image.File))
	if errors.Is(err, os.ErrNotExist) {
		return failure.IO("payload %s is missing", image.File)
	}
	if err != nil {
		return failure.IO("checking payload %s: %w", image.File, err)
	}
	if info.Size() != image.Size {
		return failure.IO("payload %s is %d bytes, record says %d", image.File, info.Size(), image.Size)
	}
	return nil
}

func (s *Store) resolvePaths(record *Record) {
	if record.Image != nil {
		record.Image.Path = s.absolute(record.Image.File)
	}
}
