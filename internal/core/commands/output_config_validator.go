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

package commands

import (
	"github.com/jaycherian/gcp-go-caption-summary/internal/core/cor"
	"github.com/jaycherian/gcp-go-caption-summary/internal/core/model"
)

// OutputConfigValidator fails the invocation before anything is written when
// no summary output bucket is configured.
type OutputConfigValidator struct {
	cor.BaseCommand
	outputBucket string
}

func NewOutputConfigValidator(name string, outputBucket string) *OutputConfigValidator {
	out := &OutputConfigValidator{BaseCommand: *cor.NewBaseCommand(name), outputBucket: outputBucket}
	out.InputParamName = ParamSummary
	return out
}

func (c *OutputConfigValidator) Execute(context cor.Context) {
	if c.outputBucket == "" {
		c.GetErrorCounter().Add(context.GetContext(), 1)
		context.AddError(c.GetName(), model.Wrap(model.ErrMissingOutputConfig, "summary output bucket", nil))
		return
	}
	c.GetSuccessCounter().Add(context.GetContext(), 1)
	context.Add(c.GetOutputParam(), context.Get(ParamSummary))
}
