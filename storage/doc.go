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


// Package storage provides the document store abstraction for crawlit.
//
// This package defines the DocumentStore interface that decouples chunk
// persistence and similarity search from the ingestion and retrieval logic.
// Two backends implement it:
//
//   - storage/badger: the primary store. Chunks are MUS-encoded into a
//     BadgerDB directory and Query performs a brute-force cosine-distance
//     scan over stored embeddings, nearest-first.
//   - storage/flatfile: the fallback store, used when BadgerDB cannot be
//     initialized. Each chunk's content lives in its own file under
//     documents/, with a single JSON index mapping ids to embeddings and
//     metadata. Its Query does not compute similarity; it returns an
//     arbitrary prefix of stored ids with placeholder distances.
//
// Backend selection is a runtime capability check performed once by the
// root crawlit package: the primary is attempted first and the fallback is
// substituted transparently on initialization failure. Downstream code
// depends only on the interface.
//
// # Constructor Return Type Pattern
//
// Public constructors return the storage.DocumentStore interface to enforce
// abstraction and keep backends swappable; internal constructors may return
// concrete types.
//
// # Thread Safety
//
// All implementations must be safe for concurrent use. Concurrent Add calls
// with distinct ids are independent; same-id writes are last-write-wins.
package storage
