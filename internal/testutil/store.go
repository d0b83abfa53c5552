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

// Package testutil provides in-memory stand-ins for the cloud collaborators
// and builders for the notifications that trigger the workflows.
package testutil

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/jaycherian/gcp-go-caption-summary/internal/cloud"
	"github.com/jaycherian/gcp-go-caption-summary/internal/core/model"
)

type storedObject struct {
	data        []byte
	contentType string
	etag        string
	updated     time.Time
	metadata    map[string]string
}

// MemoryStore is an ObjectStore kept in memory. Failures can be injected per
// operation and object.
type MemoryStore struct {
	mu          sync.Mutex
	objects     map[string]*storedObject
	failures    map[string]error
	generations int
	deleted     []string
}

var _ cloud.ObjectStore = (*MemoryStore)(nil)

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{objects: make(map[string]*storedObject), failures: make(map[string]error)}
}

func objectPath(bucket, key string) string {
	return bucket + "/" + key
}

// Seed stores an object as if it had been uploaded by someone else.
func (m *MemoryStore) Seed(bucket, key string, data []byte) {
	m.SeedWithETag(bucket, key, data, "")
}

// SeedWithETag stores an object with a fixed entity tag.
func (m *MemoryStore) SeedWithETag(bucket, key string, data []byte, etag string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.store(bucket, key, data, "application/octet-stream", nil)
	if etag != "" {
		m.objects[objectPath(bucket, key)].etag = etag
	}
}

func (m *MemoryStore) store(bucket, key string, data []byte, contentType string, metadata map[string]string) {
	m.generations++
	m.objects[objectPath(bucket, key)] = &storedObject{
		data:        append([]byte(nil), data...),
		contentType: contentType,
		etag:        fmt.Sprintf("\"etag-%d\"", m.generations),
		updated:     time.Unix(1730000000+int64(m.generations), 0).UTC(),
		metadata:    metadata,
	}
}

func (m *MemoryStore) fail(op, bucket, key string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failures[op+" "+objectPath(bucket, key)] = err
}

func (m *MemoryStore) FailGet(bucket, key string, err error)     { m.fail("get", bucket, key, err) }
func (m *MemoryStore) FailPut(bucket, key string, err error)     { m.fail("put", bucket, key, err) }
func (m *MemoryStore) FailHead(bucket, key string, err error)    { m.fail("head", bucket, key, err) }
func (m *MemoryStore) FailDelete(bucket, key string, err error)  { m.fail("delete", bucket, key, err) }
func (m *MemoryStore) FailList(bucket, prefix string, err error) { m.fail("list", bucket, prefix, err) }

func (m *MemoryStore) injected(op, bucket, key string) error {
	return m.failures[op+" "+objectPath(bucket, key)]
}

func notFound(op, bucket, key string) error {
	return model.Wrap(model.ErrNotFound, fmt.Sprintf("%s gs://%s/%s", op, bucket, key), nil)
}

func (m *MemoryStore) Get(_ context.Context, bucket, key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.injected("get", bucket, key); err != nil {
		return nil, err
	}
	obj, ok := m.objects[objectPath(bucket, key)]
	if !ok {
		return nil, notFound("get", bucket, key)
	}
	return append([]byte(nil), obj.data...), nil
}

func (m *MemoryStore) Put(_ context.Context, bucket, key string, data []byte, contentType string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.injected("put", bucket, key); err != nil {
		return err
	}
	m.store(bucket, key, data, contentType, map[string]string{cloud.WrittenByMetadataKey: cloud.WrittenByMetadataValue})
	return nil
}

func (m *MemoryStore) Head(_ context.Context, bucket, key string) (*cloud.ObjectInfo, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.injected("head", bucket, key); err != nil {
		return nil, err
	}
	obj, ok := m.objects[objectPath(bucket, key)]
	if !ok {
		return nil, notFound("head", bucket, key)
	}
	return obj.info(key), nil
}

func (o *storedObject) info(key string) *cloud.ObjectInfo {
	return &cloud.ObjectInfo{
		Key:         key,
		ETag:        o.etag,
		Size:        int64(len(o.data)),
		ContentType: o.contentType,
		Updated:     o.updated,
		Metadata:    o.metadata,
	}
}

func (m *MemoryStore) List(_ context.Context, bucket, prefix string) ([]cloud.ObjectInfo, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.injected("list", bucket, prefix); err != nil {
		return nil, err
	}
	var out []cloud.ObjectInfo
	for path, obj := range m.objects {
		key, ok := strings.CutPrefix(path, bucket+"/")
		if !ok || !strings.HasPrefix(key, prefix) {
			continue
		}
		out = append(out, *obj.info(key))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out, nil
}

func (m *MemoryStore) Delete(_ context.Context, bucket, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.injected("delete", bucket, key); err != nil {
		return err
	}
	if _, ok := m.objects[objectPath(bucket, key)]; !ok {
		return notFound("delete", bucket, key)
	}
	delete(m.objects, objectPath(bucket, key))
	m.deleted = append(m.deleted, objectPath(bucket, key))
	return nil
}

// Object returns the stored bytes as a string.
func (m *MemoryStore) Object(bucket, key string) (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	obj, ok := m.objects[objectPath(bucket, key)]
	if !ok {
		return "", false
	}
	return string(obj.data), true
}

// ContentType returns the content type an object was written with.
func (m *MemoryStore) ContentType(bucket, key string) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	if obj, ok := m.objects[objectPath(bucket, key)]; ok {
		return obj.contentType
	}
	return ""
}

// Keys lists the keys present in bucket, sorted.
func (m *MemoryStore) Keys(bucket string) []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	var keys []string
	for path := range m.objects {
		if k, ok := strings.CutPrefix(path, bucket+"/"); ok {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	return keys
}

// Deleted lists "bucket/key" paths removed through Delete, in order.
func (m *MemoryStore) Deleted() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.deleted...)
}
