// Copyright 2026 The SnapGrid Authors
// SPDX-License-Identifier: Apache-2.0

package opener

import "sync"

// Recorder is an in-memory Opener for tests. It records every request
// and returns Err (if set) from both methods.
type Recorder struct {
	mu          sync.Mutex
	urls        []string
	directories []string

	// Err is returned by OpenURL and OpenDirectory when non-nil.
	Err error
}

// OpenURL implements Opener.
func (r *Recorder) OpenURL(url string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return r.Err
	}
	r.urls = append(r.urls, url)
	return nil
}

// OpenDirectory implements Opener.
func (r *Recorder) OpenDirectory(path string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return r.Err
	}
	r.directories = append(r.directories, path)
	return nil
}

// URLs returns a copy of the URLs opened so far.
func (r *Recorder) URLs() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.urls...)
}

// Directories returns a copy of the directories opened so far.
func (r *Recorder) Directories() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.directories...)
}
