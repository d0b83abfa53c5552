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
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
)

// Event types reported by Cloud Storage Pub/Sub notifications.
const (
	EventTypeAttribute = "eventType"
	ObjectFinalize     = "OBJECT_FINALIZE"
)

// GetGCSObjectName is the context key holding the *GCSObject that triggered a
// workflow.
func GetGCSObjectName() string {
	return "__GCS__OBJ__"
}

// EventMessage is a Pub/Sub message as delivered by either a pull
// subscription or a push request.
type EventMessage struct {
	ID         string
	Data       []byte
	Attributes map[string]string
}

// PubSubPushEnvelope is the body of a Pub/Sub push request.
type PubSubPushEnvelope struct {
	Message struct {
		Data        []byte            `json:"data"`
		Attributes  map[string]string `json:"attributes"`
		MessageID   string            `json:"messageId"`
		PublishTime string            `json:"publishTime"`
	} `json:"message"`
	Subscription string `json:"subscription"`
}

// EventMessage converts the push body into the listener message form.
func (e *PubSubPushEnvelope) EventMessage() *EventMessage {
	return &EventMessage{ID: e.Message.MessageID, Data: e.Message.Data, Attributes: e.Message.Attributes}
}

// NewObjectEvent builds the message for a manual run against an existing
// object, as if its creation had just been notified.
func NewObjectEvent(bucket, key string) *EventMessage {
	return &EventMessage{
		ID: "manual",
		Attributes: map[string]string{
			"bucketId":         bucket,
			"objectId":         url.QueryEscape(key),
			EventTypeAttribute: ObjectFinalize,
		},
	}
}

// GCSPubSubNotification is the JSON payload of a Cloud Storage notification
// in the JSON_API_V1 format.
type GCSPubSubNotification struct {
	Kind           string            `json:"kind"`           // The kind of the object, typically "storage#object".
	ID             string            `json:"id"`             // The full ID of the object, including bucket and generation.
	Name           string            `json:"name"`           // The name of the object within the bucket.
	Bucket         string            `json:"bucket"`         // The name of the bucket containing the object.
	Generation     string            `json:"generation"`     // The generation number of the object's content.
	MetaGeneration string            `json:"metageneration"` // The generation number of the object's metadata.
	ContentType    string            `json:"contentType"`    // The MIME type of the object's content.
	TimeCreated    string            `json:"timeCreated"`    // The creation time of the object.
	Updated        string            `json:"updated"`        // The last modification time of the object.
	Size           string            `json:"size"`           // The size of the object in bytes.
	MD5Hash        string            `json:"md5Hash"`        // The MD5 hash of the object's content.
	MetaData       map[string]string `json:"metadata"`       // User-provided metadata, if any.
	ETag           string            `json:"etag"`           // The HTTP ETag of the object.
}

// GCSObject is the trimmed down view of a notification that workflows use.
type GCSObject struct {
	Bucket    string            // The name of the GCS bucket.
	Name      string            // The percent-decoded object key.
	MIMEType  string            // The MIME type of the object (e.g., "video/mp4").
	ETag      string            // The entity tag of the notified generation.
	EventType string            // The notification event type, empty when unknown.
	Metadata  map[string]string // Custom object metadata.
}

// WrittenByPipeline reports whether the object was written by this service.
func (o *GCSObject) WrittenByPipeline() bool {
	return o.Metadata[WrittenByMetadataKey] == WrittenByMetadataValue
}

// ParseNotification extracts the notified object from a Pub/Sub message.
// Bucket and key fall back to the bucketId and objectId attributes when the
// payload lacks them.
func ParseNotification(msg *EventMessage) (*GCSObject, error) {
	if msg == nil {
		return nil, errors.New("nil event message")
	}
	var n GCSPubSubNotification
	if len(msg.Data) > 0 {
		if err := json.Unmarshal(msg.Data, &n); err != nil {
			return nil, fmt.Errorf("failed to unmarshal GCS notification: %w", err)
		}
	}
	if n.Bucket == "" {
		n.Bucket = msg.Attributes["bucketId"]
	}
	if n.Name == "" {
		n.Name = msg.Attributes["objectId"]
	}
	return &GCSObject{
		Bucket:    n.Bucket,
		Name:      DecodeObjectKey(n.Name),
		MIMEType:  n.ContentType,
		ETag:      n.ETag,
		EventType: msg.Attributes[EventTypeAttribute],
		Metadata:  n.MetaData,
	}, nil
}

// DecodeObjectKey percent-decodes a key with '+' meaning space. Keys that do
// not decode are returned unchanged.
func DecodeObjectKey(key string) string {
	decoded, err := url.QueryUnescape(key)
	if err != nil {
		return key
	}
	return decoded
}
