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
	"github.com/gofiber/fiber/v2"
)

// errorResponse is the body of every non-200 reply.
type errorResponse struct {
	Error string `json:"error"`
}

// answerRequest is the body of POST /answer.
type answerRequest struct {
	Question string `json:"question"`
}

// queueStats reports the state of the ingestion queue.
type queueStats struct {
	Depth       int `json:"depth"`
	DeadLetters int `json:"dead_letters"`
}

// handlePing returns a simple health check response.
func (s *Server) handlePing(c *fiber.Ctx) error {
	return c.JSON("pong")
}

// handleAnswer resolves a question against the index. The response body is
// the answer envelope unchanged: failures inside retrieval surface as a
// 200 with the error described in the result field, never as an HTTP error.
func (s *Server) handleAnswer(c *fiber.Ctx) error {
	var req answerRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(errorResponse{
			Error: "request body must be JSON with a question field",
		})
	}
	if req.Question == "" {
		return c.Status(fiber.StatusBadRequest).JSON(errorResponse{
			Error: "question is required",
		})
	}

	return c.JSON(s.answerer.Answer(c.Context(), req.Question))
}

// handleQueueStats reports ingestion queue depth and dead letter count.
func (s *Server) handleQueueStats(c *fiber.Ctx) error {
	if s.queue == nil {
		return c.Status(fiber.StatusServiceUnavailable).JSON(errorResponse{
			Error: "queue is not configured",
		})
	}

	ctx := c.Context()
	depth, err := s.queue.Depth(ctx)
	if err != nil {
		s.logger.Error("reading queue depth failed", "err", err)
		return c.Status(fiber.StatusInternalServerError).JSON(errorResponse{
			Error: "failed to read queue depth",
		})
	}

	dead, err := s.queue.DeadLetters(ctx)
	if err != nil {
		s.logger.Error("reading dead letters failed", "err", err)
		return c.Status(fiber.StatusInternalServerError).JSON(errorResponse{
			Error: "failed to read dead letters",
		})
	}

	return c.JSON(queueStats{Depth: depth, DeadLetters: len(dead)})
}
