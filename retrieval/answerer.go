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

package retrieval

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/poiesic/groundit/ai"
	"github.com/poiesic/groundit/core"
	"github.com/poiesic/groundit/vectorindex"
)

const (
	defaultTopK              = 4
	defaultGenerationTimeout = 30 * time.Second
)

// Failure results are fixed strings: the same failure always produces the
// same envelope.
const (
	resultEmptyQuestion = "the question is empty"
	resultNoDocuments   = "no documents have been indexed yet"
	resultInternalError = "an internal error occurred while answering the question"
)

// Answerer resolves questions against the vector index.
type Answerer struct {
	vectors   *vectorindex.Store
	embedder  ai.Embedder
	generator ai.Generator
	topK      int
	timeout   time.Duration
	logger    *slog.Logger
}

// Option configures an Answerer.
type Option func(*Answerer) error

// WithTopK sets how many chunks are fed to the generator. Default is 4.
func WithTopK(k int) Option {
	return func(a *Answerer) error {
		if k < 1 {
			return errors.New("topK must be positive")
		}
		a.topK = k
		return nil
	}
}

// WithGenerationTimeout bounds the answer generation call. Default is 30s.
func WithGenerationTimeout(timeout time.Duration) Option {
	return func(a *Answerer) error {
		if timeout <= 0 {
			return errors.New("generation timeout must be positive")
		}
		a.timeout = timeout
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(a *Answerer) error {
		if logger == nil {
			logger = slog.Default()
		}
		a.logger = logger
		return nil
	}
}

// NewAnswerer creates an answerer over the given vector store and provider.
func NewAnswerer(vectors *vectorindex.Store, provider ai.Provider, opts ...Option) (*Answerer, error) {
	if vectors == nil {
		return nil, ErrVectorStoreRequired
	}
	if provider == nil {
		return nil, ErrAIProviderRequired
	}

	a := &Answerer{
		vectors:   vectors,
		embedder:  provider.Embedder(),
		generator: provider.Generator(),
		topK:      defaultTopK,
		timeout:   defaultGenerationTimeout,
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		if err := opt(a); err != nil {
			return nil, err
		}
	}
	a.logger = a.logger.With("component", "answerer")
	return a, nil
}

// Answer resolves a question to a grounded answer envelope. It never
// returns an error: failures are logged and expressed as an envelope with
// a fixed result string and no references.
func (a *Answerer) Answer(ctx context.Context, question string) core.Answer {
	question = strings.TrimSpace(question)
	if question == "" {
		return core.ErrorAnswer(resultEmptyQuestion)
	}

	embedding, err := a.embedder.EmbedText(ctx, question)
	if err != nil {
		a.logger.Error("embedding question failed", "err", err)
		return core.ErrorAnswer(resultInternalError)
	}

	records, err := a.vectors.Scan(ctx)
	if err != nil {
		a.logger.Error("scanning vector index failed", "err", err)
		return core.ErrorAnswer(resultInternalError)
	}
	if len(records) == 0 {
		return core.ErrorAnswer(resultNoDocuments)
	}

	top := RankTopK(records, embedding, a.topK)

	passages := make([]string, len(top))
	for i, hit := range top {
		passages[i] = hit.Record.Text
	}

	genCtx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	result, err := a.generator.GenerateAnswer(genCtx, question, passages)
	if err != nil {
		a.logger.Error("answer generation failed", "err", err)
		return core.ErrorAnswer(resultInternalError)
	}

	references := make([]core.Reference, len(top))
	for i, hit := range top {
		references[i] = core.Reference{
			Source:     hit.Record.DocumentKey,
			Page:       hit.Record.Meta.Page,
			Score:      hit.Score,
			Title:      hit.Record.Meta.Title,
			Author:     hit.Record.Meta.Author,
			TotalPages: hit.Record.Meta.TotalPages,
		}
	}

	a.logger.Info("question answered",
		"scanned", len(records),
		"references", len(references))
	return core.Answer{Result: result, References: references}
}
