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
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/tmc/langchaingo/documentloaders"
	"github.com/tmc/langchaingo/textsplitter"

	"github.com/poiesic/groundit/core"
)

// pdfMagic is the header every PDF starts with. Format detection goes by
// content, not extension, since uploaded keys can carry any name.
var pdfMagic = []byte("%PDF-")

// chunk is one extracted text fragment plus the page it came from.
type chunk struct {
	Text string
	Meta core.PageMeta
}

// extractor splits document bytes into embeddable chunks.
type extractor struct {
	splitter textsplitter.RecursiveCharacter
}

func newExtractor(chunkSize, chunkOverlap int) extractor {
	return extractor{
		splitter: textsplitter.NewRecursiveCharacter(
			textsplitter.WithChunkSize(chunkSize),
			textsplitter.WithChunkOverlap(chunkOverlap),
		),
	}
}

// extract turns a document's raw bytes into ordered chunks. PDFs are split
// per page so each chunk keeps its page number; everything else is treated
// as plain text.
func (e extractor) extract(ctx context.Context, data []byte) ([]chunk, error) {
	var chunks []chunk
	var err error
	if bytes.HasPrefix(data, pdfMagic) {
		chunks, err = e.extractPDF(ctx, data)
	} else {
		chunks, err = e.extractText(data)
	}
	if err != nil {
		return nil, err
	}
	if len(chunks) == 0 {
		return nil, ErrNoText
	}
	return chunks, nil
}

func (e extractor) extractPDF(ctx context.Context, data []byte) ([]chunk, error) {
	loader := documentloaders.NewPDF(bytes.NewReader(data), int64(len(data)))
	docs, err := loader.LoadAndSplit(ctx, e.splitter)
	if err != nil {
		return nil, fmt.Errorf("loading pdf: %w", err)
	}

	chunks := make([]chunk, 0, len(docs))
	for _, doc := range docs {
		text := strings.TrimSpace(doc.PageContent)
		if text == "" {
			continue
		}
		chunks = append(chunks, chunk{
			Text: text,
			Meta: core.PageMeta{
				Page:       metaInt(doc.Metadata["page"]),
				TotalPages: metaInt(doc.Metadata["total_pages"]),
			},
		})
	}
	return chunks, nil
}

func (e extractor) extractText(data []byte) ([]chunk, error) {
	pieces, err := e.splitter.SplitText(string(data))
	if err != nil {
		return nil, fmt.Errorf("splitting text: %w", err)
	}

	chunks := make([]chunk, 0, len(pieces))
	for _, piece := range pieces {
		text := strings.TrimSpace(piece)
		if text == "" {
			continue
		}
		chunks = append(chunks, chunk{Text: text})
	}
	return chunks, nil
}

// metaInt reads a numeric loader metadata value, whatever Go type the
// loader chose for it.
func metaInt(v any) int {
	switch n := v.(type) {
	case int:
		return n
	case int64:
		return int(n)
	case float64:
		return int(n)
	default:
		return 0
	}
}
