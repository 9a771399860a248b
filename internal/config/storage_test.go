package config

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateKeyFormat(t *testing.T) {
	key := GenerateKey("complaints", "application.pdf")

	require.True(t, strings.HasPrefix(key, "complaints/"))
	assert.True(t, strings.HasSuffix(key, "-application.pdf"))

	// prefix/<timestamp>-<suffix>-<filename>
	rest := strings.TrimPrefix(key, "complaints/")
	parts := strings.SplitN(rest, "-", 3)
	require.Len(t, parts, 3)
	assert.NotEmpty(t, parts[0])
	assert.Len(t, parts[1], 12)
	assert.Equal(t, "application.pdf", parts[2])
}

func TestGenerateKeyUnique(t *testing.T) {
	seen := map[string]bool{}
	for i := 0; i < 100; i++ {
		key := GenerateKey("project-photos", "site.jpg")
		require.False(t, seen[key], "key %q generated twice", key)
		seen[key] = true
	}
}
