package catalog

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/disputekit/disputekit-server/internal/domain"
)

func quietLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetLevel(logrus.FatalLevel)
	return logger
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
}

func TestLoader_LoadDegradesPerNetwork(t *testing.T) {
	dir := t.TempDir()

	writeFile(t, filepath.Join(dir, "reasons", "visa.json"), `[
		{"code": "10.4", "title": "Other Fraud", "category": "fraud", "scenarioPattern": "did not authorize|card stolen"},
		{"code": "13.1", "title": "Not Received", "category": "consumer dispute"},
		{"title": "missing code"}
	]`)
	writeFile(t, filepath.Join(dir, "reasons", "mastercard.yaml"), `
- code: "4837"
  title: No Cardholder Authorization
  category: fraud
  timeLimitIssuerDays: 120
  matchKeywords: [unauthorized, stolen card]
`)
	writeFile(t, filepath.Join(dir, "reasons", "amex.json"), `{not json`)
	writeFile(t, filepath.Join(dir, "strategies", "visa.json"), `{
		"10.4": {"customerStrategy": "Say you did not authorize it.", "strategyTips": ["Mention card was in your possession"]}
	}`)
	writeFile(t, filepath.Join(dir, "bins.json"), `{"414720": {"network": "visa", "issuer": "Chase"}}`)

	loader := NewLoader(dir, nil, quietLogger())
	snap, err := loader.Load(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 2, snap.Catalog.Len("visa"))
	assert.Equal(t, 1, snap.Catalog.Len("mastercard"))
	assert.Equal(t, 0, snap.Catalog.Len("amex"))
	assert.Equal(t, 0, snap.Catalog.Len("discover"))

	mc, err := snap.Catalog.Get("mastercard", "4837")
	require.NoError(t, err)
	require.NotNil(t, mc.TimeLimitIssuerDays)
	assert.Equal(t, 120, *mc.TimeLimitIssuerDays)
	assert.Equal(t, []string{"unauthorized", "stolen card"}, mc.MatchKeywords)

	assert.Contains(t, snap.Failures, "reasons/amex")
	assert.Contains(t, snap.Failures, "reasons/discover")
	assert.Contains(t, snap.Failures, "strategies/mastercard")
	assert.NotContains(t, snap.Failures, "reasons/visa")
	assert.NotContains(t, snap.Failures, "issuers")
	assert.ErrorIs(t, snap.Failures["reasons/amex"], domain.ErrCatalogUnavailable)

	strategy, err := snap.Strategies.Strategy("visa", "10.4")
	require.NoError(t, err)
	assert.Equal(t, "Say you did not authorize it.", strategy.CustomerStrategy)

	bin, err := snap.Directory.LookupBin("414720")
	require.NoError(t, err)
	assert.Equal(t, "Chase", bin.Issuer)
}

func TestLoader_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewLoader(t.TempDir(), nil, quietLogger()).Load(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestWriteDataFile_RoundTrip(t *testing.T) {
	dir := t.TempDir()
	days := 30
	entries := []domain.ReasonCodeEntry{{Code: "UA02", Title: "Non-Receipt", TimeLimitIssuerDays: &days}}

	for _, name := range []string{"discover.json", "discover.yaml"} {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(dir, name)
			require.NoError(t, WriteDataFile(path, entries))

			var decoded []domain.ReasonCodeEntry
			require.NoError(t, DecodeFile(path, &decoded))
			require.Len(t, decoded, 1)
			assert.Equal(t, "UA02", decoded[0].Code)
			require.NotNil(t, decoded[0].TimeLimitIssuerDays)
			assert.Equal(t, 30, *decoded[0].TimeLimitIssuerDays)
		})
	}
}

func TestFindDataFile_Missing(t *testing.T) {
	_, err := FindDataFile(t.TempDir(), "visa")
	assert.True(t, os.IsNotExist(err))
}
