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

package cloud

import (
	"errors"
	"fmt"
	"net/http"

	"cloud.google.com/go/storage"
	"github.com/jaycherian/gcp-go-caption-summary/internal/core/model"
	"google.golang.org/api/googleapi"
)

// classifyStorageError maps a Cloud Storage failure onto the model error
// markers. Errors that match no marker are wrapped unchanged.
func classifyStorageError(operation string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, storage.ErrObjectNotExist) || errors.Is(err, storage.ErrBucketNotExist) {
		return model.Wrap(model.ErrNotFound, operation, err)
	}
	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		switch apiErr.Code {
		case http.StatusNotFound:
			return model.Wrap(model.ErrNotFound, operation, err)
		case http.StatusUnauthorized, http.StatusForbidden:
			return model.Wrap(model.ErrAccessDenied, operation, err)
		}
	}
	return fmt.Errorf("%s: %w", operation, err)
}
