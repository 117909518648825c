package agent

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractJSON_FencedBlock(t *testing.T) {
	out := "Here is the summary:\n```json\n{\"status\": \"done\", \"files\": 3}\n```\nAll good."

	obj, ok := ExtractJSON(out)
	require.True(t, ok)
	assert.Equal(t, "done", obj["status"])
	assert.Equal(t, float64(3), obj["files"])
}

func TestExtractJSON_FencedBlockNoLanguage(t *testing.T) {
	out := "```\n{\"ok\": true}\n```"

	obj, ok := ExtractJSON(out)
	require.True(t, ok)
	assert.Equal(t, true, obj["ok"])
}

func TestExtractJSON_BareObject(t *testing.T) {
	out := `The agent finished. {"result": "success"} That was it.`

	obj, ok := ExtractJSON(out)
	require.True(t, ok)
	assert.Equal(t, "success", obj["result"])
}

func TestExtractJSON_PrefersLongestBalancedSpan(t *testing.T) {
	out := `ignored {"a": 1} but this one {"a": 1, "b": 2, "c": 3} is richer`

	obj, ok := ExtractJSON(out)
	require.True(t, ok)
	assert.Len(t, obj, 3)
}

func TestExtractJSON_SkipsUnparseableSpans(t *testing.T) {
	out := `code sample: {not json at all} followed by {"valid": true}`

	obj, ok := ExtractJSON(out)
	require.True(t, ok)
	assert.Equal(t, true, obj["valid"])
}

func TestExtractJSON_NothingFound(t *testing.T) {
	for _, out := range []string{"", "plain prose only", "unbalanced { brace"} {
		_, ok := ExtractJSON(out)
		assert.False(t, ok, "input %q", out)
	}
}

func TestBalancedSpans_Nested(t *testing.T) {
	spans := balancedSpans(`{"outer": {"inner": 1}} trailing {"x": 2}`)
	require.Len(t, spans, 2)
	assert.Equal(t, `{"outer": {"inner": 1}}`, spans[0])
	assert.Equal(t, `{"x": 2}`, spans[1])
}
