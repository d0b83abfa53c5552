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

package main

import (
	"context"
	"log/slog"

	"github.com/jaycherian/gcp-go-caption-summary/internal/cloud"
	"github.com/jaycherian/gcp-go-caption-summary/internal/core/cor"
)

// SetupListeners starts a pull listener for each configured subscription.
// Topics without a subscription are served by the push endpoints only.
func SetupListeners(ctx context.Context, cloudClients *cloud.ServiceClients, workflows map[string]cor.Command) {
	for key, command := range workflows {
		listener, ok := cloudClients.PubSubListeners[key]
		if !ok {
			slog.Info("no pull subscription configured, push only", "topic", key)
			continue
		}
		listener.SetCommand(command)
		listener.Listen(ctx)
	}
}
