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


// Package storage provides the blob storage abstraction for groundit.
//
// The pipeline deliberately stores everything as plain objects: raw
// documents in a material bucket, vector records and index manifests in a
// vector bucket. There is no database and no secondary index; readers pay
// the cost of enumerating objects.
//
// ObjectStore is the only interface. Writers use put-new-object semantics
// (never read-modify-write), and a reader that starts after a Put has
// returned is guaranteed to observe the object. Readers concurrent with a
// writer may or may not observe in-flight objects.
//
// The storage/fs subpackage implements ObjectStore on a local directory,
// one file per object with atomic rename on put.
//
// All methods accept context.Context and must be safe for concurrent use.
package storage
