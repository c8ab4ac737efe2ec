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


package queue

import "errors"

var (
	// ErrNoMessages indicates that no message is currently receivable.
	ErrNoMessages = errors.New("no receivable messages")

	// ErrUnknownLease indicates an ack or nack with a lease that no longer
	// covers the message, typically because the visibility window lapsed
	// and the message was redelivered or dead-lettered.
	ErrUnknownLease = errors.New("unknown or expired lease")

	// ErrQueueClosed indicates that the queue is closed.
	ErrQueueClosed = errors.New("queue is closed")
)
