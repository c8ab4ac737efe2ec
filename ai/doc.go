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


// Package ai provides abstractions for the AI services used in groundit.
//
// Two model calls exist in the pipeline: embedding (used both at ingestion
// and for the question at retrieval time, which must be the same model for
// scores to be meaningful) and answer generation. The package defines
// interfaces for them so the worker and the retrieval service depend on
// abstractions rather than concrete clients.
//
//   - Embedder: generates vector embeddings from text
//   - Generator: produces a grounded answer from passages and a question
//   - Provider: aggregates both for convenient initialization
//
// The ai/openai subpackage implements the interfaces against
// OpenAI-compatible APIs via langchaingo (Ollama, LocalAI, vLLM, or OpenAI
// itself). The ai/mock subpackage provides deterministic test doubles.
//
// Public constructors return interface types to enforce abstraction; mock
// constructors return concrete types so tests can inject behavior and make
// assertions.
package ai
