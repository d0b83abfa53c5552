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
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"cloud.google.com/go/storage"
	"google.golang.org/api/iterator"
)

// Object metadata stamped on every object this service writes. Notifications
// for objects carrying it are ignored.
const (
	WrittenByMetadataKey   = "written-by"
	WrittenByMetadataValue = "caption-summary"
)

// ObjectInfo is the subset of object attributes the pipeline reads.
type ObjectInfo struct {
	Key         string
	ETag        string
	Size        int64
	ContentType string
	Updated     time.Time
	Metadata    map[string]string
}

// ObjectStore is the narrow object storage interface used by the pipeline.
// Missing objects surface as model.ErrNotFound and permission failures as
// model.ErrAccessDenied.
type ObjectStore interface {
	Get(ctx context.Context, bucket, key string) ([]byte, error)
	Put(ctx context.Context, bucket, key string, data []byte, contentType string) error
	Head(ctx context.Context, bucket, key string) (*ObjectInfo, error)
	Delete(ctx context.Context, bucket, key string) error
	// List returns the objects whose key starts with prefix, in key order.
	List(ctx context.Context, bucket, prefix string) ([]ObjectInfo, error)
}

// GCSObjectStore implements ObjectStore on Cloud Storage.
type GCSObjectStore struct {
	client *storage.Client
}

func NewGCSObjectStore(client *storage.Client) *GCSObjectStore {
	return &GCSObjectStore{client: client}
}

func (s *GCSObjectStore) Get(ctx context.Context, bucket, key string) ([]byte, error) {
	reader, err := s.client.Bucket(bucket).Object(key).NewReader(ctx)
	if err != nil {
		return nil, classifyStorageError(fmt.Sprintf("get gs://%s/%s", bucket, key), err)
	}
	defer func(reader *storage.Reader) {
		_ = reader.Close()
	}(reader)

	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, classifyStorageError(fmt.Sprintf("read gs://%s/%s", bucket, key), err)
	}
	return data, nil
}

func (s *GCSObjectStore) Put(ctx context.Context, bucket, key string, data []byte, contentType string) error {
	writer := s.client.Bucket(bucket).Object(key).NewWriter(ctx)
	writer.ContentType = contentType
	writer.Metadata = map[string]string{WrittenByMetadataKey: WrittenByMetadataValue}

	if _, err := writer.Write(data); err != nil {
		_ = writer.Close()
		return classifyStorageError(fmt.Sprintf("put gs://%s/%s", bucket, key), err)
	}
	// The object is only committed once Close returns.
	if err := writer.Close(); err != nil {
		return classifyStorageError(fmt.Sprintf("put gs://%s/%s", bucket, key), err)
	}
	return nil
}

func (s *GCSObjectStore) Head(ctx context.Context, bucket, key string) (*ObjectInfo, error) {
	attrs, err := s.client.Bucket(bucket).Object(key).Attrs(ctx)
	if err != nil {
		return nil, classifyStorageError(fmt.Sprintf("head gs://%s/%s", bucket, key), err)
	}
	return objectInfoFrom(attrs), nil
}

func objectInfoFrom(attrs *storage.ObjectAttrs) *ObjectInfo {
	return &ObjectInfo{
		Key:         attrs.Name,
		ETag:        attrs.Etag,
		Size:        attrs.Size,
		ContentType: attrs.ContentType,
		Updated:     attrs.Updated,
		Metadata:    attrs.Metadata,
	}
}

func (s *GCSObjectStore) List(ctx context.Context, bucket, prefix string) ([]ObjectInfo, error) {
	it := s.client.Bucket(bucket).Objects(ctx, &storage.Query{Prefix: prefix})
	var out []ObjectInfo
	for {
		attrs, err := it.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, classifyStorageError(fmt.Sprintf("list gs://%s/%s", bucket, prefix), err)
		}
		out = append(out, *objectInfoFrom(attrs))
	}
	return out, nil
}

func (s *GCSObjectStore) Delete(ctx context.Context, bucket, key string) error {
	if err := s.client.Bucket(bucket).Object(key).Delete(ctx); err != nil {
		return classifyStorageError(fmt.Sprintf("delete gs://%s/%s", bucket, key), err)
	}
	return nil
}

// NormalizeETag strips the quotes some APIs put around entity tags.
func NormalizeETag(etag string) string {
	return strings.Trim(strings.TrimSpace(etag), `"`)
}
