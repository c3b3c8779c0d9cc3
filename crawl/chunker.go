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


package crawl

import "strings"

// DefaultChunkSize is the target chunk length in bytes.
const DefaultChunkSize = 5000

// breakThreshold is the fraction of the chunk size below which a natural
// boundary is ignored, so chunks never shrink below 30% of the target.
const breakThreshold = 0.3

// ChunkText splits text into chunks of roughly chunkSize bytes, preferring
// to break at natural boundaries. Boundaries are tried in order: the last
// code fence, the last paragraph break, the last sentence end. A boundary
// is only used when it lies past 30% of the window, otherwise the chunk is
// cut at the full size.
//
// Chunks are whitespace-trimmed and empty chunks are dropped. A non-positive
// chunkSize falls back to DefaultChunkSize.
func ChunkText(text string, chunkSize int) []string {
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}

	var chunks []string
	start := 0
	length := len(text)
	minBreak := float64(chunkSize) * breakThreshold

	for start < length {
		end := start + chunkSize

		// Remainder fits in one chunk
		if end >= length {
			if chunk := strings.TrimSpace(text[start:]); chunk != "" {
				chunks = append(chunks, chunk)
			}
			break
		}

		window := text[start:end]

		if fence := strings.LastIndex(window, "```"); fence != -1 && float64(fence) > minBreak {
			end = start + fence
		} else if strings.Contains(window, "\n\n") {
			if para := strings.LastIndex(window, "\n\n"); float64(para) > minBreak {
				end = start + para
			}
		} else if period := strings.LastIndex(window, ". "); period != -1 && float64(period) > minBreak {
			// Keep the period with the current chunk
			end = start + period + 1
		}

		if chunk := strings.TrimSpace(text[start:end]); chunk != "" {
			chunks = append(chunks, chunk)
		}

		// Guarantees forward progress even when a boundary lands at start
		start = max(start+1, end)
	}

	return chunks
}
