package utils

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTextHelpers(t *testing.T) {
	assert.Equal(t, "a b c", NormalizeWhitespace("a \n\t b   c"))
	assert.Equal(t, "supply chain", NormalizeKey("  Supply\n  CHAIN "))
	assert.Equal(t, 4, RuneLen("供应链a"))
	assert.Equal(t, "供应...", TruncateRunes("供应链管理", 2))
	assert.Equal(t, "短", TruncateRunes("短", 100))
}

func TestSanitizeForLog(t *testing.T) {
	assert.Equal(t, "line1 line2 tab", SanitizeForLog("line1\nline2\ttab"))
	assert.Equal(t, "ab", SanitizeForLog("a\x00b"))
	assert.Equal(t, []string{}, SanitizeForLogArray(nil))
}

func TestGetMaxDocumentSize(t *testing.T) {
	t.Setenv("MAX_DOCUMENT_SIZE_MB", "2")
	assert.Equal(t, int64(2*1024*1024), GetMaxDocumentSize())

	t.Setenv("MAX_DOCUMENT_SIZE_MB", "invalid")
	assert.Equal(t, int64(50), GetMaxDocumentSizeMB())
}

func TestGenerateSchema(t *testing.T) {
	type output struct {
		KnowledgePoints []string `json:"knowledge_points"`
	}
	raw := GenerateSchema[output]()

	var schema map[string]any
	require.NoError(t, json.Unmarshal(raw, &schema))
	props, ok := schema["properties"].(map[string]any)
	require.True(t, ok)
	assert.Contains(t, props, "knowledge_points")
}
