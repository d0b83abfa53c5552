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

package api

import (
	"fmt"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jaycherian/gcp-go-caption-summary/internal/core/model"
)

// readLimited reads the request body, rejecting bodies larger than limit.
func readLimited(c *gin.Context, limit int64) ([]byte, error) {
	body, err := io.ReadAll(http.MaxBytesReader(c.Writer, c.Request.Body, limit+1))
	if err != nil {
		return nil, model.Wrap(model.ErrValidation, "request body", err)
	}
	if int64(len(body)) > limit {
		return nil, model.Wrap(model.ErrValidation, fmt.Sprintf("body exceeds %d bytes", limit), nil)
	}
	return body, nil
}
