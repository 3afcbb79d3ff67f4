// Copyright 2025 The packetd Authors
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package telemetry

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStartSpanGeneratesDistinctIDs(t *testing.T) {
	a := StartSpan("GET", "127.0.0.1:6379")
	b := StartSpan("GET", "127.0.0.1:6379")
	assert.NotEqual(t, a.TraceID, b.TraceID)
	assert.NotEqual(t, a.SpanID, b.SpanID)
	assert.Equal(t, "GET", a.Command)
	assert.Equal(t, "127.0.0.1:6379", a.Target)
}

func TestSpanEndDoesNotPanic(t *testing.T) {
	s := StartSpan("PING", "127.0.0.1:6379")
	assert.NotPanics(t, func() { s.End(OutcomeOK) })
}

func TestRecordRedirectDoesNotPanic(t *testing.T) {
	assert.NotPanics(t, func() { RecordRedirect("GET", "10.0.0.2:6380", OutcomeMoved) })
	assert.NotPanics(t, func() { RecordRedirect("GET", "10.0.0.3:6381", OutcomeAsk) })
}
