// Copyright 2024 Google, LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//	https://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.
// *****************************************************************************************************//
// Package main is the entry point for the media studio backend server.
//
// The server exposes a REST API for the generative media studio front end:
// the task catalog, single-sample generation for each task type, the prompt
// template library, and batch submissions. It is instrumented with
// OpenTelemetry for logging, tracing, and metrics, and runs a background
// Pub/Sub listener that processes submitted batches out of band.
package main

import (
	"context"
	"errors"
	"io"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/jaycherian/gcp-go-media-studio/internal/core/model"
	"github.com/jaycherian/gcp-go-media-studio/internal/core/services"
	"github.com/jaycherian/gcp-go-media-studio/internal/telemetry"
)

// main wires up logging, telemetry, state, routes, and listeners, then
// serves until interrupted.
func main() {
	telemetry.SetupLogging()
	slog.Info("Logging initialized")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	config := GetConfig()

	_, err := telemetry.SetupOpenTelemetry(ctx, config)
	if err != nil {
		slog.Error("Failed to setup OpenTelemetry", "error", err)
		log.Fatal(err)
	}
	slog.Info("Tracing initialized")

	InitState(ctx)
	slog.Info("Initialized State")

	r := gin.Default()
	r.Use(otelgin.Middleware("media-studio-server"))
	r.Use(cors.Default())

	apiV1 := r.Group("/api/v1")
	{
		TaskRouter(apiV1)
		GenerationRouter(apiV1)
		TemplateRouter(apiV1)
		BatchRouter(apiV1)
	}

	srv := &http.Server{
		Addr:         ":8080",
		Handler:      r,
		ReadTimeout:  20 * time.Second,
		WriteTimeout: 20 * time.Second,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("failed to listen: ", "error", err)
		}
	}()
	slog.Info("Server Ready on port 8080")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	slog.Info("Shutdown Server ...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("Server Shutdown Failed:", "error", err)
	}

	log.Println("Server exiting")
}

// writeServiceError maps the service error taxonomy onto HTTP statuses.
func writeServiceError(c *gin.Context, err error) {
	var validation *services.ValidationError
	switch {
	case errors.As(err, &validation):
		c.JSON(http.StatusBadRequest, gin.H{"error": validation.Error()})
	case errors.Is(err, services.ErrTemplateNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, services.ErrPollTimeout):
		c.JSON(http.StatusGatewayTimeout, gin.H{"error": err.Error()})
	default:
		log.Printf("request failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}

// TaskRouter exposes the static task catalog.
func TaskRouter(r *gin.RouterGroup) {
	tasks := r.Group("/tasks")
	{
		// Handler for GET /tasks
		tasks.GET("", func(c *gin.Context) {
			c.JSON(http.StatusOK, model.AvailableTasks())
		})
	}
}

// generationRequest is the JSON body for POST /generations. Binary inputs
// arrive as data URIs, matching what the browser produces from a file
// picker.
type generationRequest struct {
	TaskType        string   `json:"task_type" binding:"required"`
	Model           string   `json:"model"`
	Prompt          string   `json:"prompt"`
	NegativePrompt  string   `json:"negative_prompt"`
	AspectRatio     string   `json:"aspect_ratio"`
	Resolution      string   `json:"resolution"`
	Seed            *int32   `json:"seed"`
	SampleCount     int      `json:"sample_count"`
	ReferenceImages []string `json:"reference_images"`
	DriverAudio     string   `json:"driver_audio"`
	StartImage      string   `json:"start_image"`
	EndImage        string   `json:"end_image"`
}

// toParams converts the wire request into generation parameters, decoding
// every attachment and defaulting the model from the task catalog.
func (req *generationRequest) toParams(task model.TaskType) (*model.GenerationParams, error) {
	params := &model.GenerationParams{
		Model:          req.Model,
		Prompt:         req.Prompt,
		NegativePrompt: req.NegativePrompt,
		AspectRatio:    req.AspectRatio,
		Resolution:     req.Resolution,
		Seed:           req.Seed,
		SampleCount:    req.SampleCount,
	}
	if params.Model == "" {
		if cfg, ok := model.LookupTask(task); ok {
			params.Model = cfg.DefaultModel()
		}
	}

	for i, ref := range req.ReferenceImages {
		attachment, err := model.NewAttachmentFromDataURI("reference_image_"+strconv.Itoa(i), ref)
		if err != nil {
			return nil, err
		}
		params.ReferenceImages = append(params.ReferenceImages, attachment)
	}
	var err error
	if req.DriverAudio != "" {
		if params.DriverAudio, err = model.NewAttachmentFromDataURI("driver_audio", req.DriverAudio); err != nil {
			return nil, err
		}
	}
	if req.StartImage != "" {
		if params.StartImage, err = model.NewAttachmentFromDataURI("start_image", req.StartImage); err != nil {
			return nil, err
		}
	}
	if req.EndImage != "" {
		if params.EndImage, err = model.NewAttachmentFromDataURI("end_image", req.EndImage); err != nil {
			return nil, err
		}
	}
	return params, nil
}

// GenerationRouter exposes single-sample generation for every task type.
func GenerationRouter(r *gin.RouterGroup) {
	generations := r.Group("/generations")
	{
		// Handler for POST /generations
		generations.POST("", func(c *gin.Context) {
			var req generationRequest
			if err := c.ShouldBindJSON(&req); err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}

			task, err := model.ParseTaskType(req.TaskType)
			if err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			params, err := req.toParams(task)
			if err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}

			results, err := state.generationService.GenerateSample(c.Request.Context(), task, params)
			if err != nil {
				writeServiceError(c, err)
				return
			}
			c.JSON(http.StatusOK, results)
		})
	}
}

// templateRequest is the JSON body for template create and update calls.
type templateRequest struct {
	Name    string   `json:"name"`
	Content string   `json:"content"`
	Tags    []string `json:"tags"`
}

// TemplateRouter exposes the prompt template library CRUD surface.
func TemplateRouter(r *gin.RouterGroup) {
	templates := r.Group("/templates")
	{
		// Handler for GET /templates?s=<filter>
		templates.GET("", func(c *gin.Context) {
			c.JSON(http.StatusOK, state.templateService.List(c.Query("s")))
		})

		// Handler for GET /templates/:id
		templates.GET("/:id", func(c *gin.Context) {
			out, err := state.templateService.Get(c.Param("id"))
			if err != nil {
				writeServiceError(c, err)
				return
			}
			c.JSON(http.StatusOK, out)
		})

		// Handler for POST /templates
		templates.POST("", func(c *gin.Context) {
			var req templateRequest
			if err := c.ShouldBindJSON(&req); err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			out, err := state.templateService.Create(c.Request.Context(), req.Name, req.Content, req.Tags)
			if err != nil {
				writeServiceError(c, err)
				return
			}
			c.JSON(http.StatusCreated, out)
		})

		// Handler for PUT /templates/:id
		templates.PUT("/:id", func(c *gin.Context) {
			var req templateRequest
			if err := c.ShouldBindJSON(&req); err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			out, err := state.templateService.Update(c.Request.Context(), c.Param("id"), req.Name, req.Content, req.Tags)
			if err != nil {
				writeServiceError(c, err)
				return
			}
			c.JSON(http.StatusOK, out)
		})

		// Handler for DELETE /templates/:id
		templates.DELETE("/:id", func(c *gin.Context) {
			if err := state.templateService.Delete(c.Request.Context(), c.Param("id")); err != nil {
				writeServiceError(c, err)
				return
			}
			c.Status(http.StatusNoContent)
		})
	}
}

// batchRequest is the JSON body for quantity-driven batch submissions.
type batchRequest struct {
	Name     string `json:"name"`
	TaskType string `json:"task_type" binding:"required"`
	Prompt   string `json:"prompt"`
	Quantity int    `json:"quantity"`
}

// BatchRouter exposes batch submission. Quantity-driven batches arrive as
// JSON; file-driven batches arrive as multipart/form-data with the prompt
// file under "prompt_file". Only prompt-driven task types are accepted.
func BatchRouter(r *gin.RouterGroup) {
	batches := r.Group("/batches")
	{
		// Handler for POST /batches
		batches.POST("", func(c *gin.Context) {
			var req batchRequest
			if err := c.ShouldBindJSON(&req); err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			job, err := state.batchService.SubmitQuantity(c.Request.Context(), req.Name, req.TaskType, req.Prompt, req.Quantity)
			if err != nil {
				writeServiceError(c, err)
				return
			}
			c.JSON(http.StatusAccepted, job)
		})

		// Handler for POST /batches/file
		batches.POST("/file", func(c *gin.Context) {
			file, err := c.FormFile("prompt_file")
			if err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": "prompt_file is required"})
				return
			}
			opened, err := file.Open()
			if err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			defer func() { _ = opened.Close() }()
			data, err := io.ReadAll(opened)
			if err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}

			job, err := state.batchService.SubmitFile(
				c.Request.Context(),
				c.PostForm("name"),
				c.PostForm("task_type"),
				data,
			)
			if err != nil {
				writeServiceError(c, err)
				return
			}
			c.JSON(http.StatusAccepted, job)
		})
	}
}
