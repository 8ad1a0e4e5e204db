// Copyright 2026 The SnapGrid Authors
// SPDX-License-Identifier: Apache-2.0

package board

import (
	"errors"
	"fmt"
	"os"
	"path"
	"path/filepath"

	"github.com/gustavscirulis/snapgrid-sub001/lib/codec"
	"github.com/gustavscirulis/snapgrid-sub001/lib/failure"
	"github.com/gustavscirulis/snapgrid-sub001/lib/storagedir"
)

// recordFile is the on-disk envelope of records/<id>.cbor.
type recordFile struct {
	Version int    `cbor:"version"`
	Record  Record `cbor:"record"`
}

// Metadata is a full metadata replacement for UpdateMetadata. Exactly
// one field is set and it must match the kind of the record being
// updated.
type Metadata struct {
	Image   *ImageMetadata   `json:"image,omitempty"`
	URLCard *URLCardMetadata `json:"url_card,omitempty"`
}

// SaveImage stores payload as a new image record. The payload is
// classified by content: anything that does not sniff as an image or
// video is rejected before any file is written. The payload file is
// written first and the record file last, so the record only becomes
// visible once both are durable.
func (s *Store) SaveImage(payload []byte, metadata ImageMetadata) (*ImageRecord, error) {
	mediaType, extension, err := sniffMediaType(payload)
	if err != nil {
		return nil, err
	}
	if err := metadata.Validate(); err != nil {
		return nil, err
	}

	var saved *ImageRecord
	err = s.create(func(id string) (*Record, error) {
		file := path.Join(storagedir.ImagesDir, id+extension)
		if err := atomicWrite(s.absolute(file), payload); err != nil {
			return nil, failure.IO("writing payload for %s: %w", id, err)
		}
		saved = &ImageRecord{
			ID:        id,
			MediaType: mediaType,
			File:      file,
			Size:      int64(len(payload)),
			Digest:    digestPayload(payload),
			CreatedAt: s.clock.Now().UTC(),
			Metadata:  metadata,
		}
		return &Record{Kind: KindImage, Image: saved}, nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("image saved",
		"id", saved.ID,
		"media_type", saved.MediaType,
		"size", saved.Size,
	)
	saved.Path = s.absolute(saved.File)
	return saved, nil
}

// SaveURLCard stores a new URL card. The URL must be an absolute
// http or https URL; it is never fetched.
func (s *Store) SaveURLCard(rawURL string, metadata URLCardMetadata) (*URLCardRecord, error) {
	parsed, err := ParseWebURL(rawURL)
	if err != nil {
		return nil, err
	}
	if err := metadata.Validate(); err != nil {
		return nil, err
	}

	var saved *URLCardRecord
	err = s.create(func(id string) (*Record, error) {
		saved = &URLCardRecord{
			ID:        id,
			URL:       parsed.String(),
			CreatedAt: s.clock.Now().UTC(),
			Metadata:  metadata,
		}
		return &Record{Kind: KindURLCard, URLCard: saved}, nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("url card saved", "id", saved.ID)
	return saved, nil
}

// create assigns a fresh id, holds its lock, and calls build to write
// any payload and produce the record, then writes the record file. An
// id that already has a record file is never reused: create draws
// another one.
func (s *Store) create(build func(id string) (*Record, error)) error {
	for attempt := 0; attempt < maxIDAttempts; attempt++ {
		id := s.newID()
		if !validID(id) {
			return failure.Internal("id generator produced %q", id)
		}

		created, err := s.createLocked(id, build)
		if err != nil {
			return err
		}
		if created {
			return nil
		}
		s.logger.Warn("record id already in use, generating another", "id", id)
	}
	return failure.Internal("no unused record id after %d attempts", maxIDAttempts)
}

func (s *Store) createLocked(id string, build func(id string) (*Record, error)) (bool, error) {
	unlock := s.locks.lock(id)
	defer unlock()

	if _, err := os.Lstat(s.recordPath(id)); err == nil {
		return false, nil
	} else if !errors.Is(err, os.ErrNotExist) {
		return false, failure.IO("checking record %s: %w", id, err)
	}

	record, err := build(id)
	if err != nil {
		s.removePayloads(id)
		return false, err
	}
	if err := s.writeRecord(record); err != nil {
		s.removePayloads(id)
		return false, err
	}
	return true, nil
}

// UpdateMetadata replaces the metadata of an existing record wholesale.
// The id, payload, and creation time never change.
func (s *Store) UpdateMetadata(id string, metadata Metadata) (*Record, error) {
	if err := checkID(id); err != nil {
		return nil, err
	}
	switch {
	case metadata.Image != nil && metadata.URLCard != nil:
		return nil, failure.Validation("metadata must set exactly one of image or url_card")
	case metadata.Image != nil:
		if err := metadata.Image.Validate(); err != nil {
			return nil, err
		}
	case metadata.URLCard != nil:
		if err := metadata.URLCard.Validate(); err != nil {
			return nil, err
		}
	default:
		return nil, failure.Validation("metadata must set exactly one of image or url_card")
	}

	unlock := s.locks.lock(id)
	defer unlock()

	record, err := s.readRecord(id)
	if err != nil {
		return nil, err
	}
	switch record.Kind {
	case KindImage:
		if metadata.Image == nil {
			return nil, failure.Validation("record %s is an image; url_card metadata does not apply", id)
		}
		record.Image.Metadata = *metadata.Image
	case KindURLCard:
		if metadata.URLCard == nil {
			return nil, failure.Validation("record %s is a url card; image metadata does not apply", id)
		}
		record.URLCard.Metadata = *metadata.URLCard
	}
	if err := s.writeRecord(record); err != nil {
		return nil, err
	}

	s.logger.Info("metadata updated", "id", id, "kind", record.Kind)
	s.resolvePaths(record)
	return record, nil
}

// Delete removes a record and its payload. Deleting an id that has no
// record returns false and no error, so a repeated or concurrent delete
// is a no-op. The record file goes first: once it is gone the record is
// invisible, and a payload left behind by a crash between the two
// removals is swept at the next Open.
func (s *Store) Delete(id string) (bool, error) {
	if err := checkID(id); err != nil {
		return false, err
	}

	unlock := s.locks.lock(id)
	defer unlock()

	err := os.Remove(s.recordPath(id))
	if errors.Is(err, os.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, failure.IO("deleting record %s: %w", id, err)
	}
	if err := syncDir(s.recordsDir); err != nil {
		s.logger.Warn("syncing records directory after delete failed", "id", id, "error", err)
	}

	if err := s.removePayloads(id); err != nil {
		s.logger.Warn("record deleted but payload removal failed; it will be swept at next open",
			"id", id,
			"error", err,
		)
	}

	s.logger.Info("record deleted", "id", id)
	return true, nil
}

// removePayloads removes every payload file for id.
func (s *Store) removePayloads(id string) error {
	matches, err := filepath.Glob(s.payloadPattern(id))
	if err != nil {
		return err
	}
	var errs []error
	for _, match := range matches {
		if err := os.Remove(match); err != nil && !errors.Is(err, os.ErrNotExist) {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (s *Store) writeRecord(record *Record) error {
	id := record.ID()
	stored := *record
	if stored.Image != nil {
		image := *stored.Image
		image.Path = ""
		stored.Image = &image
	}
	data, err := codec.Marshal(recordFile{Version: recordVersion, Record: stored})
	if err != nil {
		return failure.Internal("encoding record %s: %w", id, err)
	}
	if err := atomicWrite(s.recordPath(id), data); err != nil {
		return failure.IO("writing record %s: %w", id, err)
	}
	return nil
}

// atomicWrite writes data to target through a temp file in the same
// directory, fsyncs it, and renames it into place. Readers see either
// the previous content or the new content, never a partial file. Temp
// files orphaned by a crash match tempPattern and are swept at Open.
func atomicWrite(target string, data []byte) error {
	dir := filepath.Dir(target)
	temp, err := os.CreateTemp(dir, tempPattern)
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tempPath := temp.Name()
	committed := false
	defer func() {
		if !committed {
			os.Remove(tempPath)
		}
	}()

	if err := temp.Chmod(fileMode); err != nil {
		temp.Close()
		return fmt.Errorf("setting permissions on %s: %w", tempPath, err)
	}
	if _, err := temp.Write(data); err != nil {
		temp.Close()
		return fmt.Errorf("writing %s: %w", tempPath, err)
	}
	if err := temp.Sync(); err != nil {
		temp.Close()
		return fmt.Errorf("syncing %s: %w", tempPath, err)
	}
	if err := temp.Close(); err != nil {
		return fmt.Errorf("closing %s: %w", tempPath, err)
	}
	if err := os.Rename(tempPath, target); err != nil {
		return fmt.Errorf("renaming into %s: %w", target, err)
	}
	committed = true

	if err := syncDir(dir); err != nil {
		return fmt.Errorf("syncing %s: %w", dir, err)
	}
	return nil
}
