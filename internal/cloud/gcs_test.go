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

package cloud_test

import (
	"encoding/json"
	"testing"

	"github.com/jaycherian/gcp-go-caption-summary/internal/cloud"
	"github.com/jaycherian/gcp-go-caption-summary/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseNotification(t *testing.T) {
	msg := testutil.CaptionEvent("captions", "model/transcribe/meetup-palla-1763239925.srt")
	obj, err := cloud.ParseNotification(msg)
	require.NoError(t, err)

	assert.Equal(t, "captions", obj.Bucket)
	assert.Equal(t, "model/transcribe/meetup-palla-1763239925.srt", obj.Name)
	assert.Equal(t, cloud.ObjectFinalize, obj.EventType)
	assert.False(t, obj.WrittenByPipeline())
}

func TestParseNotificationDecodesKey(t *testing.T) {
	msg := testutil.CaptionEvent("captions", "model/transcribe/meetup-my+talk%C3%A9-17.srt")
	obj, err := cloud.ParseNotification(msg)
	require.NoError(t, err)
	assert.Equal(t, "model/transcribe/meetup-my talké-17.srt", obj.Name)
}

func TestParseNotificationFallsBackToAttributes(t *testing.T) {
	msg := &cloud.EventMessage{Attributes: map[string]string{
		"bucketId":  "captions",
		"objectId":  "a.srt",
		"eventType": "OBJECT_DELETE",
	}}
	obj, err := cloud.ParseNotification(msg)
	require.NoError(t, err)
	assert.Equal(t, "captions", obj.Bucket)
	assert.Equal(t, "a.srt", obj.Name)
	assert.Equal(t, "OBJECT_DELETE", obj.EventType)
}

func TestParseNotificationRejectsInvalidJSON(t *testing.T) {
	_, err := cloud.ParseNotification(&cloud.EventMessage{Data: []byte("{not json")})
	assert.Error(t, err)
	_, err = cloud.ParseNotification(nil)
	assert.Error(t, err)
}

func TestWrittenByPipeline(t *testing.T) {
	msg := testutil.PipelineWrittenCaptionEvent("captions", "model/transcribe/palla.srt")
	obj, err := cloud.ParseNotification(msg)
	require.NoError(t, err)
	assert.True(t, obj.WrittenByPipeline())
}

func TestDecodeObjectKey(t *testing.T) {
	assert.Equal(t, "a b.srt", cloud.DecodeObjectKey("a+b.srt"))
	assert.Equal(t, "a b.srt", cloud.DecodeObjectKey("a%20b.srt"))
	assert.Equal(t, "bad%zz.srt", cloud.DecodeObjectKey("bad%zz.srt"))
}

func TestPushEnvelope(t *testing.T) {
	body := `{"message":{"data":"eyJidWNrZXQiOiJiIiwibmFtZSI6ImsifQ==","attributes":{"eventType":"OBJECT_FINALIZE"},"messageId":"42"},"subscription":"projects/p/subscriptions/s"}`
	var envelope cloud.PubSubPushEnvelope
	require.NoError(t, json.Unmarshal([]byte(body), &envelope))

	msg := envelope.EventMessage()
	assert.Equal(t, "42", msg.ID)
	obj, err := cloud.ParseNotification(msg)
	require.NoError(t, err)
	assert.Equal(t, "b", obj.Bucket)
	assert.Equal(t, "k", obj.Name)
	assert.Equal(t, cloud.ObjectFinalize, obj.EventType)
}

func TestNormalizeETag(t *testing.T) {
	assert.Equal(t, "abc", cloud.NormalizeETag(`"abc"`))
	assert.Equal(t, "CN658+yrhYkDEAE=", cloud.NormalizeETag(" CN658+yrhYkDEAE= "))
}

func TestNewObjectEventRoundTrip(t *testing.T) {
	obj, err := cloud.ParseNotification(cloud.NewObjectEvent("media", "model/transcribe/my talk+1.srt"))
	require.NoError(t, err)

	assert.Equal(t, "media", obj.Bucket)
	assert.Equal(t, "model/transcribe/my talk+1.srt", obj.Name)
	assert.Equal(t, cloud.ObjectFinalize, obj.EventType)
	assert.False(t, obj.WrittenByPipeline())
}
