// Copyright 2024 Google, LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     https://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package model

import (
	"errors"
	"fmt"
)

// Error markers. Adapters wrap provider errors with one of these so callers
// branch on errors.Is instead of provider-specific codes.
var (
	ErrNotFound            = errors.New("not found")
	ErrAccessDenied        = errors.New("access denied")
	ErrMalformedConfig     = errors.New("malformed config")
	ErrInferenceAuth       = errors.New("inference authorization error")
	ErrNoTextInResponse    = errors.New("no text in model response")
	ErrMissingOutputConfig = errors.New("summary output bucket is not configured")
	ErrArtifactWrite       = errors.New("artifact write failed")
	ErrValidation          = errors.New("validation error")
)

// Wrap tags err with marker and a short description of the failed operation.
func Wrap(marker error, operation string, err error) error {
	if err == nil {
		return fmt.Errorf("%w: %s", marker, operation)
	}
	return fmt.Errorf("%w: %s: %w", marker, operation, err)
}
