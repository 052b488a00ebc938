// Copyright (c) 2025 AccelByte Inc. All Rights Reserved.
// This is licensed software from AccelByte Inc, for limitations
// and restrictions contact your company contract manager.

package session

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSafeMap(t *testing.T) {
	var m SafeMap[string, int]

	_, ok := m.Load("a")
	assert.False(t, ok)

	m.Store("a", 1)
	m.Store("b", 2)
	v, ok := m.Load("a")
	assert.True(t, ok)
	assert.Equal(t, 1, v)
	assert.Equal(t, 2, m.Len())
	assert.ElementsMatch(t, []string{"a", "b"}, m.Keys())

	assert.False(t, m.CompareAndDelete("a", 5))
	assert.True(t, m.CompareAndDelete("a", 1))

	v, ok = m.LoadAndDelete("b")
	assert.True(t, ok)
	assert.Equal(t, 2, v)
	assert.Equal(t, 0, m.Len())
}
