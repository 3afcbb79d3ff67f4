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

package tracekit

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRandomTraceID(t *testing.T) {
	a := RandomTraceID()
	b := RandomTraceID()
	assert.NotEqual(t, [16]byte{}, [16]byte(a))
	assert.NotEqual(t, a, b)
}

func TestRandomSpanID(t *testing.T) {
	a := RandomSpanID()
	b := RandomSpanID()
	assert.NotEqual(t, [8]byte{}, [8]byte(a))
	assert.NotEqual(t, a, b)
}
