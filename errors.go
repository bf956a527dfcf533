// Copyright 2025 Agentic World, LLC (Sherin Thomas)
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package pagescope

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidURL is returned when the target URL cannot be parsed or
	// uses a non-HTTP scheme. Terminal, never retried.
	ErrInvalidURL = errors.New("invalid target URL")
	// ErrUnsupportedMode is returned when the requested mode name is not
	// present in the mode table. Terminal, never retried.
	ErrUnsupportedMode = errors.New("unsupported analysis mode")
	// ErrDeadline is returned when the overall analysis deadline elapses.
	// Surfaced distinctly so callers can tell "too slow" from "broken".
	ErrDeadline = errors.New("analysis deadline exceeded")
)

// UpstreamError is returned when the target page could not be fetched
// after exhausting the bounded retry loop. Status holds the last
// observed HTTP status, zero when the failure was a transport error.
type UpstreamError struct {
	URL      string
	Status   int
	Attempts int
	Err      error
}

// Error implements the error interface.
func (e *UpstreamError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("upstream fetch of %q failed with status %d after %d attempts", e.URL, e.Status, e.Attempts)
	}
	return fmt.Sprintf("upstream fetch of %q failed after %d attempts: %v", e.URL, e.Attempts, e.Err)
}

// Unwrap exposes the underlying transport error, if any.
func (e *UpstreamError) Unwrap() error {
	return e.Err
}
