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


// Package queue defines the ingestion message channel for groundit.
//
// The channel delivers at least once: a received message is leased for a
// visibility window and, if not acknowledged before the lease expires,
// becomes receivable again. Redeliveries are capped by a delivery-attempt
// ceiling; a message that exhausts it is routed to a terminal dead-letter
// queue and never handed to a consumer again. There is no automatic
// re-drive out of the dead-letter queue.
//
// Consumers must be idempotent with respect to redelivery: the pipeline's
// vector writes use put-new-object semantics, so reprocessing a message
// rewrites the same record set rather than corrupting it.
//
// The queue/badger subpackage implements the channel durably on BadgerDB.
package queue
