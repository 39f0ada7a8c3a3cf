package config

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNormalizeJSONCRemovesCommentsAndTrailingCommas(t *testing.T) {
	input := `
{
  // line comment
  "items": [
    "one", /* block comment */
    "two",
  ],
  "nested": {
    "enabled": true,
  },
}
`

	normalized, err := normalizeJSONC(input)
	require.NoError(t, err)
	require.NotContains(t, normalized, "//")
	require.NotContains(t, normalized, "/*")
	require.NotContains(t, normalized, ",]")
	require.NotContains(t, normalized, ",}")
}

func TestNormalizeJSONCRetainsCommentLikeTextInsideStrings(t *testing.T) {
	input := `{"value":"contains // and /* comment-like */ text",}`
	normalized, err := normalizeJSONC(input)
	require.NoError(t, err)
	require.Contains(t, normalized, "// and /* comment-like */")
}

func TestNormalizeJSONCUnterminatedBlockCommentFails(t *testing.T) {
	_, err := normalizeJSONC("{ /* unterminated ")
	require.Error(t, err)
	require.Contains(t, err.Error(), "unterminated block comment")
}

func TestEnsureSingleJSONValueRejectsExtraPayload(t *testing.T) {
	decoder := json.NewDecoder(strings.NewReader(`{"one":1}{"two":2}`))
	var payload map[string]any
	require.NoError(t, decoder.Decode(&payload))

	err := ensureSingleJSONValue(decoder)
	require.Error(t, err)
	require.Contains(t, err.Error(), "multiple JSON values")
}

func TestOffsetToLineCol(t *testing.T) {
	content := "line1\nline2\nline3"
	line, col := offsetToLineCol(content, 1)
	require.Equal(t, 1, line)
	require.Equal(t, 1, col)

	line, col = offsetToLineCol(content, 8) // line2, col2
	require.Equal(t, 2, line)
	require.Equal(t, 2, col)

	line, col = offsetToLineCol(content, 999)
	require.Equal(t, 3, line)
	require.Equal(t, 5, col)
}

func TestParseJSONCRejectsInvalidCommandArgv(t *testing.T) {
	_, err := parseJSONC(`{"report":{"copy_cmd":"unterminated ' quote"}}`, Default())
	require.Error(t, err)
	require.Contains(t, err.Error(), "invalid report.copy_cmd")
}

func TestParseJSONCRejectsUnknownKeys(t *testing.T) {
	_, err := parseJSONC(`{
  "service": {"grpc": "127.0.0.1:50051"}
}`, Default())
	require.Error(t, err)
	require.Contains(t, err.Error(), "unknown field")
}

func TestParseJSONCTrimsServiceAndLogFields(t *testing.T) {
	cfg, err := parseJSONC(`{
  "service": {"base_url": "  http://127.0.0.1:8000  "},
  "log": {"level": "  WARN "},
}`, Default())
	require.NoError(t, err)
	require.Equal(t, "http://127.0.0.1:8000", cfg.Service.BaseURL)
	require.Equal(t, "warn", cfg.Log.Level)
}

func TestParseJSONCRejectsMultipleTopLevelValues(t *testing.T) {
	_, err := parseJSONC(`{"debug":{"audio_dump":false}}{"debug":{"audio_dump":true}}`, Default())
	require.Error(t, err)
	require.True(
		t,
		strings.Contains(err.Error(), "multiple JSON values") || strings.Contains(err.Error(), "unknown field"),
		"unexpected error: %v",
		err,
	)
}

func TestParseJSONCTypeErrorIncludesLocation(t *testing.T) {
	_, err := parseJSONC(`{
  "service": {"start_timeout_ms": "soon"}
}`, Default())
	require.Error(t, err)
	require.Contains(t, err.Error(), "line")
	require.Contains(t, err.Error(), "column")
}

func TestParseJSONCEnablesCues(t *testing.T) {
	cfg, err := parseJSONC(`{"cues": {"enable": true}}`, Default())
	require.NoError(t, err)
	require.True(t, cfg.Cues.Enable)

	cfg, err = parseJSONC(`{"log": {"level": "warn"}}`, Default())
	require.NoError(t, err)
	require.False(t, cfg.Cues.Enable)
}
