// Copyright (c) 2025 AccelByte Inc. All Rights Reserved.
// This is licensed software from AccelByte Inc, for limitations
// and restrictions contact your company contract manager.

package utils

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGenerateUUID(t *testing.T) {
	id := GenerateUUID()
	assert.Len(t, id, 32)
	assert.NotContains(t, id, "-")
	assert.NotEqual(t, id, GenerateUUID())
}

func TestGenerateProcessCode(t *testing.T) {
	a := GenerateProcessCode("Artemis")
	b := GenerateProcessCode("Artemis")
	assert.True(t, strings.HasPrefix(a, "Artemis"))
	assert.Len(t, a, len("Artemis")+26)
	assert.NotEqual(t, a, b)
}
