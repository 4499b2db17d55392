package catalog

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/disputekit/disputekit-server/internal/domain"
)

func TestImportLegacy(t *testing.T) {
	legacy := map[string]map[string]domain.ReasonCodeEntry{
		"Visa": {
			"13.1": {Title: "Merchandise/Services Not Received"},
			"10.4": {Code: "10.4", Title: "Other Fraud", ScenarioPattern: "kept"},
		},
	}
	scenarios := map[string][]ScenarioSeed{
		"visa": {
			{ReasonCode: "13.1", ScenarioPattern: "never arrived|not delivered"},
			{ReasonCode: "10.4", ScenarioPattern: "ignored"},
		},
	}

	out := ImportLegacy(legacy, scenarios)

	entries := out["visa"]
	require.Len(t, entries, 2)
	assert.Equal(t, "10.4", entries[0].Code)
	assert.Equal(t, "kept", entries[0].ScenarioPattern)
	assert.Equal(t, "13.1", entries[1].Code)
	assert.Equal(t, "visa", entries[1].Network)
	assert.Equal(t, "never arrived|not delivered", entries[1].ScenarioPattern)
}

func TestEnhanceTimeLimits(t *testing.T) {
	entries := []domain.ReasonCodeEntry{
		{Code: "a", TimeLimitIssuer: "120 calendar days", TimeLimitAcquirer: "30 days"},
		{Code: "b", TimeLimitIssuer: "See network rules"},
	}

	changed := EnhanceTimeLimits(entries)

	assert.Equal(t, 1, changed)
	require.NotNil(t, entries[0].TimeLimitIssuerDays)
	assert.Equal(t, 120, *entries[0].TimeLimitIssuerDays)
	assert.Equal(t, 30, *entries[0].TimeLimitAcquirerDays)
	assert.Nil(t, entries[1].TimeLimitIssuerDays)
	assert.NotNil(t, entries[1].MatchKeywords)
}

func TestSeedKeywords(t *testing.T) {
	entries := []domain.ReasonCodeEntry{
		{Code: "10.4", Title: "Other Fraud - Card Absent"},
		{Code: "12.6", Title: "Duplicate Processing"},
		{Code: "13.1", Title: "Not Received", MatchKeywords: []string{"custom"}},
		{Code: "99", Title: "Something else"},
	}

	filled := SeedKeywords(entries)

	assert.Equal(t, 2, filled)
	assert.Contains(t, entries[0].MatchKeywords, "stolen card")
	assert.Contains(t, entries[1].MatchKeywords, "charged twice")
	assert.Equal(t, []string{"custom"}, entries[2].MatchKeywords)
	assert.Empty(t, entries[3].MatchKeywords)
}

func TestConvertBinsCSV(t *testing.T) {
	t.Run("converts rows", func(t *testing.T) {
		in := "BIN,Brand,Issuer,Type,Category,isoCode2\n" +
			"411111,VISA,Chase,CREDIT,Classic,US\n" +
			"550000,MASTERCARD,Citi,DEBIT,,US\n" +
			",VISA,blank,,,\n"

		bins, err := ConvertBinsCSV(strings.NewReader(in))
		require.NoError(t, err)
		require.Len(t, bins, 2)
		assert.Equal(t, domain.BinInfo{
			BIN: "411111", Network: "visa", Issuer: "Chase", CardType: "credit", CardSubType: "Classic", Country: "US",
		}, bins["411111"])
		assert.Equal(t, "debit", bins["550000"].CardType)
	})

	t.Run("missing column", func(t *testing.T) {
		_, err := ConvertBinsCSV(strings.NewReader("BIN,Brand\n411111,VISA\n"))
		assert.ErrorIs(t, err, domain.ErrMalformedInput)
	})

	t.Run("empty input", func(t *testing.T) {
		_, err := ConvertBinsCSV(strings.NewReader(""))
		assert.ErrorIs(t, err, domain.ErrMalformedInput)
	})
}
