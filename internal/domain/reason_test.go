package domain

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReasonCodeEntry_Alternatives(t *testing.T) {
	tests := []struct {
		name    string
		pattern string
		want    []string
	}{
		{"empty", "", nil},
		{"single", "did not authorize", []string{"did not authorize"}},
		{"trimmed", " card stolen | did not authorize ", []string{"card stolen", "did not authorize"}},
		{"skips blanks", "a||  |b", []string{"a", "b"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			entry := ReasonCodeEntry{ScenarioPattern: tt.pattern}
			if tt.want == nil {
				assert.Empty(t, entry.Alternatives())
				return
			}
			assert.Equal(t, tt.want, entry.Alternatives())
		})
	}
}

func TestReasonCodeEntry_CloneIsDeep(t *testing.T) {
	days := 120
	entry := ReasonCodeEntry{
		Code:                "10.4",
		StrategyTips:        []string{"tip"},
		TimeLimitIssuerDays: &days,
	}

	clone := entry.Clone()
	clone.StrategyTips[0] = "changed"
	*clone.TimeLimitIssuerDays = 1

	assert.Equal(t, "tip", entry.StrategyTips[0])
	assert.Equal(t, 120, *entry.TimeLimitIssuerDays)
}

func TestMatchResult_JSON(t *testing.T) {
	t.Run("no match writes nulls", func(t *testing.T) {
		data, err := json.Marshal(NoMatch())
		require.NoError(t, err)

		var raw map[string]interface{}
		require.NoError(t, json.Unmarshal(data, &raw))
		assert.Nil(t, raw["network"])
		assert.Nil(t, raw["reasonCode"])
		assert.Nil(t, raw["title"])
		assert.Nil(t, raw["score"])
		assert.Equal(t, string(OutcomeNoMatch), raw["outcome"])
	})

	t.Run("match keeps fields", func(t *testing.T) {
		score := 0.75
		result := NewMatchResult(ReasonCodeEntry{
			Network: NetworkVisa,
			Code:    "13.1",
			Title:   "Merchandise/Services Not Received",
		}, MethodFuzzy, &score)

		data, err := json.Marshal(result)
		require.NoError(t, err)

		var decoded MatchResult
		require.NoError(t, json.Unmarshal(data, &decoded))
		assert.Equal(t, "13.1", decoded.ReasonCode)
		assert.Equal(t, NetworkVisa, decoded.Network)
		assert.Equal(t, MethodFuzzy, decoded.Method)
		require.NotNil(t, decoded.Score)
		assert.InDelta(t, 0.75, *decoded.Score, 1e-9)
		assert.Equal(t, OutcomeFound, decoded.Outcome())
	})
}

func TestParseTone(t *testing.T) {
	assert.Equal(t, ToneAssertive, ParseTone("Assertive"))
	assert.Equal(t, TonePolite, ParseTone(" polite "))
	assert.Equal(t, ToneFormal, ParseTone("formal"))
	assert.Equal(t, ToneFormal, ParseTone("sarcastic"))
	assert.Equal(t, ToneFormal, ParseTone(""))
}
