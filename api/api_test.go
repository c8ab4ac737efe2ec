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
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/poiesic/groundit/ai/mock"
	"github.com/poiesic/groundit/core"
	badgerqueue "github.com/poiesic/groundit/queue/badger"
	"github.com/poiesic/groundit/retrieval"
	"github.com/poiesic/groundit/storage/fs"
	"github.com/poiesic/groundit/vectorindex"
)

func newTestServer(t *testing.T) (*Server, *vectorindex.Store, *badgerqueue.Queue) {
	t.Helper()

	objects, err := fs.New(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { objects.Close() })

	vectors, err := vectorindex.New(objects)
	require.NoError(t, err)

	answerer, err := retrieval.NewAnswerer(vectors, mock.NewMockProvider())
	require.NoError(t, err)

	q, backend, err := badgerqueue.NewMemoryQueue()
	require.NoError(t, err)
	t.Cleanup(func() {
		q.Close()
		backend.Close()
	})

	server, err := NewServer(Config{ListenAddr: ":0"}, answerer, q, nil)
	require.NoError(t, err)
	return server, vectors, q
}

func decodeBody(t *testing.T, resp *http.Response, out any) {
	t.Helper()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(body, out))
}

func TestPing(t *testing.T) {
	server, _, _ := newTestServer(t)

	resp, err := server.app.Test(httptest.NewRequest(http.MethodGet, "/ping", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestAnswerEndpoint(t *testing.T) {
	server, vectors, _ := newTestServer(t)

	text := "the device resets by holding both buttons"
	require.NoError(t, vectors.WriteIndex(context.Background(), []*core.VectorRecord{{
		DocumentKey: "manual.pdf",
		ChunkIndex:  0,
		Vector:      mock.DeterministicVector(text, 32),
		Text:        text,
		Meta:        core.PageMeta{Page: 1, TotalPages: 1},
	}}, "etag"))

	req := httptest.NewRequest(http.MethodPost, "/answer",
		strings.NewReader(`{"question":"how do I reset?"}`))
	req.Header.Set("Content-Type", "application/json")

	resp, err := server.app.Test(req, int(5*time.Second/time.Millisecond))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var answer core.Answer
	decodeBody(t, resp, &answer)
	assert.NotEmpty(t, answer.Result)
	require.Len(t, answer.References, 1)
	assert.Equal(t, "manual.pdf", answer.References[0].Source)
}

func TestAnswerEndpointEmptyIndexKeepsEnvelope(t *testing.T) {
	server, _, _ := newTestServer(t)

	req := httptest.NewRequest(http.MethodPost, "/answer",
		strings.NewReader(`{"question":"anything there?"}`))
	req.Header.Set("Content-Type", "application/json")

	resp, err := server.app.Test(req)
	require.NoError(t, err)
	// Retrieval failures are content, not transport errors.
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var answer core.Answer
	decodeBody(t, resp, &answer)
	assert.NotEmpty(t, answer.Result)
	require.NotNil(t, answer.References)
	assert.Empty(t, answer.References)
}

func TestAnswerEndpointValidation(t *testing.T) {
	server, _, _ := newTestServer(t)

	req := httptest.NewRequest(http.MethodPost, "/answer", strings.NewReader(`{}`))
	req.Header.Set("Content-Type", "application/json")
	resp, err := server.app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	req = httptest.NewRequest(http.MethodPost, "/answer", strings.NewReader(`not json`))
	req.Header.Set("Content-Type", "application/json")
	resp, err = server.app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestQueueStats(t *testing.T) {
	server, _, q := newTestServer(t)

	require.NoError(t, q.Publish(context.Background(), &core.IngestionMessage{
		Bucket:      "documents",
		DocumentKey: "pending.txt",
		EventTime:   time.Now().UTC(),
	}))

	resp, err := server.app.Test(httptest.NewRequest(http.MethodGet, "/queue/stats", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var stats queueStats
	decodeBody(t, resp, &stats)
	assert.Equal(t, 1, stats.Depth)
	assert.Equal(t, 0, stats.DeadLetters)
}

func TestNewServerRequiresAnswerer(t *testing.T) {
	_, err := NewServer(Config{}, nil, nil, nil)
	assert.ErrorIs(t, err, ErrAnswererRequired)
}
