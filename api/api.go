// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package api

import (
	"log/slog"

	"github.com/gofiber/fiber/v2"

	"github.com/poiesic/groundit/queue"
	"github.com/poiesic/groundit/retrieval"
)

// Config is the API server configuration.
type Config struct {
	// ListenAddr is the address to listen on (e.g., ":8080")
	ListenAddr string
}

// Server answers questions over HTTP.
type Server struct {
	config   Config
	answerer *retrieval.Answerer
	queue    queue.IngestionQueue
	logger   *slog.Logger
	app      *fiber.App
}

// NewServer creates an API server. The queue is optional; without it the
// stats endpoint reports the queue as unavailable.
func NewServer(config Config, answerer *retrieval.Answerer, q queue.IngestionQueue, logger *slog.Logger) (*Server, error) {
	if answerer == nil {
		return nil, ErrAnswererRequired
	}
	if logger == nil {
		logger = slog.Default()
	}

	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
	})

	s := &Server{
		config:   config,
		answerer: answerer,
		queue:    q,
		logger:   logger.With("component", "api"),
		app:      app,
	}

	app.Get("/ping", s.handlePing)
	app.Post("/answer", s.handleAnswer)
	app.Get("/queue/stats", s.handleQueueStats)

	return s, nil
}

// Run starts the API server on the configured address.
func (s *Server) Run() error {
	s.logger.Info("starting API server", "listen", s.config.ListenAddr)
	return s.app.Listen(s.config.ListenAddr)
}

// Shutdown gracefully shuts down the API server.
func (s *Server) Shutdown() error {
	return s.app.Shutdown()
}
