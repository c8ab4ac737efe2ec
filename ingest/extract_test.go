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

package ingest

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractPlainText(t *testing.T) {
	e := newExtractor(64, 8)
	text := strings.Repeat("sentence about the product. ", 20)

	chunks, err := e.extract(context.Background(), []byte(text))
	require.NoError(t, err)
	require.Greater(t, len(chunks), 1, "text longer than the chunk size must split")

	for _, c := range chunks {
		assert.NotEmpty(t, c.Text)
		assert.LessOrEqual(t, len(c.Text), 64+8)
		assert.Zero(t, c.Meta.Page, "plain text carries no page metadata")
	}
}

func TestExtractShortTextSingleChunk(t *testing.T) {
	e := newExtractor(512, 64)

	chunks, err := e.extract(context.Background(), []byte("just one line"))
	require.NoError(t, err)
	require.Len(t, chunks, 1)
	assert.Equal(t, "just one line", chunks[0].Text)
}

func TestExtractEmptyDocument(t *testing.T) {
	e := newExtractor(512, 64)

	_, err := e.extract(context.Background(), []byte("   \n\t  "))
	assert.ErrorIs(t, err, ErrNoText)
}

func TestExtractCorruptPDF(t *testing.T) {
	e := newExtractor(512, 64)

	// Carries the PDF magic but nothing parseable behind it.
	_, err := e.extract(context.Background(), []byte("%PDF-1.7 not actually a pdf"))
	assert.Error(t, err)
}

func TestMetaInt(t *testing.T) {
	assert.Equal(t, 3, metaInt(3))
	assert.Equal(t, 3, metaInt(int64(3)))
	assert.Equal(t, 3, metaInt(float64(3)))
	assert.Equal(t, 0, metaInt("3"))
	assert.Equal(t, 0, metaInt(nil))
}
