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

// Package api exposes the service over HTTP: the Pub/Sub push endpoints that
// trigger the workflows and the administration routes used to configure
// videos and fetch their summaries.
package api

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jaycherian/gcp-go-caption-summary/internal/cloud"
	"github.com/jaycherian/gcp-go-caption-summary/internal/core/commands"
	"github.com/jaycherian/gcp-go-caption-summary/internal/core/cor"
	"github.com/jaycherian/gcp-go-caption-summary/internal/core/model"
	"github.com/jaycherian/gcp-go-caption-summary/internal/core/services"
	"github.com/jaycherian/gcp-go-caption-summary/internal/core/workflow"
)

// statusFor maps the error markers to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, model.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, model.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, model.ErrAccessDenied):
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}

func abortWithError(c *gin.Context, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		slog.ErrorContext(c.Request.Context(), "request failed", "path", c.FullPath(), "error", err)
	}
	c.AbortWithStatusJSON(status, gin.H{"error": err.Error()})
}

// PushRouter registers the Pub/Sub push endpoints. A 200 acknowledges the
// message; any other status makes Pub/Sub redeliver it.
func PushRouter(r *gin.RouterGroup, captionWorkflow, videoWorkflow cor.Command) {
	push := r.Group("/events")
	{
		push.POST("/captions", pushHandler(captionWorkflow))
		push.POST("/videos", pushHandler(videoWorkflow))
	}
}

func pushHandler(command cor.Command) gin.HandlerFunc {
	return func(c *gin.Context) {
		var envelope cloud.PubSubPushEnvelope
		if err := c.ShouldBindJSON(&envelope); err != nil {
			// Redelivering a body that does not parse cannot succeed later.
			slog.WarnContext(c.Request.Context(), "malformed push request dropped", "error", err)
			c.JSON(http.StatusOK, gin.H{"status": model.StatusIgnored})
			return
		}
		result, err := workflow.Run(c.Request.Context(), command, envelope.EventMessage())
		if err != nil {
			slog.ErrorContext(c.Request.Context(), "workflow failed", "workflow", command.GetName(),
				"message_id", envelope.Message.MessageID, "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, result)
	}
}

// VideoRouter registers the per-video configuration routes. summarize runs
// the caption workflow again for an existing canonical caption.
func VideoRouter(r *gin.RouterGroup, svc *services.VideoService, summarize cor.Command) {
	videos := r.Group("/videos/:identity")
	{
		videos.PUT("/prompt", func(c *gin.Context) {
			body, err := readLimited(c, services.MaxPromptBytes)
			if err != nil {
				abortWithError(c, err)
				return
			}
			key, err := svc.PutPrompt(c.Request.Context(), c.Param("identity"), body)
			if err != nil {
				abortWithError(c, err)
				return
			}
			c.JSON(http.StatusOK, gin.H{"key": key})
		})

		videos.PUT("/model", func(c *gin.Context) {
			var selection services.ModelSelection
			if err := c.ShouldBindJSON(&selection); err != nil {
				abortWithError(c, model.Wrap(model.ErrValidation, "model selection", err))
				return
			}
			cfg, err := svc.PutModelConfig(c.Request.Context(), c.Param("identity"), selection)
			if err != nil {
				abortWithError(c, err)
				return
			}
			c.JSON(http.StatusOK, cfg)
		})

		videos.GET("/caption", func(c *gin.Context) {
			status, err := svc.CaptionStatus(c.Request.Context(), c.Param("identity"))
			if err != nil {
				abortWithError(c, err)
				return
			}
			c.JSON(http.StatusOK, status)
		})

		videos.POST("/summarize", func(c *gin.Context) {
			status, err := svc.CaptionStatus(c.Request.Context(), c.Param("identity"))
			if err != nil {
				abortWithError(c, err)
				return
			}
			if !status.CaptionFound {
				abortWithError(c, model.Wrap(model.ErrNotFound, "canonical caption "+status.CaptionKey, nil))
				return
			}
			result, err := workflow.Run(c.Request.Context(), summarize, cloud.NewObjectEvent(svc.MediaBucket, status.CaptionKey))
			if err != nil {
				abortWithError(c, err)
				return
			}
			c.JSON(http.StatusOK, result)
		})
	}
}

// ModelRouter lists the models offered for selection.
func ModelRouter(r *gin.RouterGroup, catalog *cloud.ModelCatalog) {
	models := []cloud.CatalogEntry{}
	if catalog != nil && catalog.Models != nil {
		models = catalog.Models
	}
	r.GET("/models", func(c *gin.Context) {
		c.JSON(http.StatusOK, models)
	})
}

// CaptionRouter lists, previews and deletes canonical captions.
func CaptionRouter(r *gin.RouterGroup, svc *services.VideoService) {
	captions := r.Group("/captions")
	{
		captions.GET("", func(c *gin.Context) {
			files, err := svc.ListCaptions(c.Request.Context())
			if err != nil {
				abortWithError(c, err)
				return
			}
			c.JSON(http.StatusOK, files)
		})

		captions.GET("/:identity", func(c *gin.Context) {
			data, err := svc.Caption(c.Request.Context(), c.Param("identity"))
			if err != nil {
				abortWithError(c, err)
				return
			}
			c.Data(http.StatusOK, commands.CaptionContentType, data)
		})

		captions.DELETE("/:identity", func(c *gin.Context) {
			if err := svc.DeleteCaption(c.Request.Context(), c.Param("identity")); err != nil {
				abortWithError(c, err)
				return
			}
			c.Status(http.StatusNoContent)
		})
	}
}

// SummaryRouter lists, previews and deletes summaries and hands out signed
// URLs for them.
func SummaryRouter(r *gin.RouterGroup, svc *services.VideoService) {
	summaries := r.Group("/summaries")
	{
		summaries.GET("", func(c *gin.Context) {
			files, err := svc.ListSummaries(c.Request.Context())
			if err != nil {
				abortWithError(c, err)
				return
			}
			c.JSON(http.StatusOK, files)
		})

		summaries.GET("/:identity/:slug", func(c *gin.Context) {
			data, err := svc.Summary(c.Request.Context(), c.Param("identity"), c.Param("slug"))
			if err != nil {
				abortWithError(c, err)
				return
			}
			c.Data(http.StatusOK, commands.SummaryContentType, data)
		})

		summaries.DELETE("/:identity/:slug", func(c *gin.Context) {
			if err := svc.DeleteSummary(c.Request.Context(), c.Param("identity"), c.Param("slug")); err != nil {
				abortWithError(c, err)
				return
			}
			c.Status(http.StatusNoContent)
		})

		summaries.GET("/:identity/:slug/url", func(c *gin.Context) {
			url, err := svc.SummaryURL(c.Request.Context(), c.Param("identity"), c.Param("slug"))
			if err != nil {
				abortWithError(c, err)
				return
			}
			c.JSON(http.StatusOK, gin.H{"url": url, "expires_in_seconds": int(services.SummaryURLExpiry.Seconds())})
		})
	}
}
