package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/disputekit/disputekit-server/internal/catalog"
	"github.com/disputekit/disputekit-server/internal/domain"
)

func runCmd(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
}

func TestVersionCmd(t *testing.T) {
	out, err := runCmd(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "disputekit dev")
}

func TestCatalogImportEnhanceSeed(t *testing.T) {
	dir := t.TempDir()
	legacy := filepath.Join(dir, "reasonDetails.json")
	writeFile(t, legacy, `{
  "visa": {
    "13.1": {"title": "Merchandise Not Received", "timeLimitIssuer": "120 days"},
    "10.4": {"title": "Other Fraud - Card Absent"}
  }
}`)
	scenarios := filepath.Join(dir, "scenarios.json")
	writeFile(t, scenarios, `{"visa": [{"reasonCode": "13.1", "scenarioPattern": "never arrived"}]}`)
	dataDir := filepath.Join(dir, "data")

	out, err := runCmd(t, "catalog", "import", legacy, dataDir, "--scenarios", scenarios)
	require.NoError(t, err)
	assert.Contains(t, out, "visa: 2 entries")

	_, err = runCmd(t, "catalog", "enhance", dataDir)
	require.NoError(t, err)
	out, err = runCmd(t, "catalog", "seed-keywords", dataDir)
	require.NoError(t, err)
	assert.Contains(t, out, "Updated keywords on 2 entries")

	var entries []domain.ReasonCodeEntry
	require.NoError(t, catalog.DecodeFile(filepath.Join(dataDir, "reasons", "visa.json"), &entries))
	require.Len(t, entries, 2)
	assert.Equal(t, "10.4", entries[0].Code)
	assert.Contains(t, entries[0].MatchKeywords, "stolen card")
	assert.Equal(t, "never arrived", entries[1].ScenarioPattern)
	require.NotNil(t, entries[1].TimeLimitIssuerDays)
	assert.Equal(t, 120, *entries[1].TimeLimitIssuerDays)
}

func TestCatalogConvertBins(t *testing.T) {
	dir := t.TempDir()
	csvPath := filepath.Join(dir, "bin-list.csv")
	writeFile(t, csvPath, "BIN,Brand,Issuer,Type,Category,isoCode2\n411111,VISA,Chase,CREDIT,Classic,US\n")
	output := filepath.Join(dir, "bins.json")
	writeFile(t, output, "{}")

	out, err := runCmd(t, "catalog", "convert-bins", csvPath, "-o", output)
	require.NoError(t, err)
	assert.Contains(t, out, "Backed up existing file")
	assert.Contains(t, out, "Wrote 1 BIN entries")

	var bins map[string]domain.BinInfo
	require.NoError(t, catalog.DecodeFile(output, &bins))
	assert.Equal(t, "visa", bins["411111"].Network)
}

func TestCatalogValidate(t *testing.T) {
	dir := t.TempDir()
	for _, network := range domain.DefaultNetworks {
		writeFile(t, filepath.Join(dir, "reasons", network+".json"), `[{"code": "1", "title": "One"}]`)
		writeFile(t, filepath.Join(dir, "strategies", network+".json"), `{}`)
	}

	out, err := runCmd(t, "catalog", "validate", dir)
	require.NoError(t, err)
	assert.Contains(t, out, "OK")

	require.NoError(t, os.Remove(filepath.Join(dir, "strategies", "amex.json")))
	out, err = runCmd(t, "catalog", "validate", dir)
	assert.Error(t, err)
	assert.Contains(t, out, "FAIL strategies/amex")
}

func TestSetupCmd(t *testing.T) {
	dir := t.TempDir()
	clientConfig := filepath.Join(dir, "claude_desktop_config.json")
	binary := filepath.Join(dir, "mcp-server-lite")
	writeFile(t, binary, "#!/bin/sh\n")
	require.NoError(t, os.Chmod(binary, 0755))

	out, err := runCmd(t, "setup", "--client-config", clientConfig, "--binary", binary, "--mcp-data-dir", dir)
	require.NoError(t, err)
	assert.Contains(t, out, "Registered disputekit")

	out, err = runCmd(t, "setup", "status", "--client-config", clientConfig)
	require.NoError(t, err)
	assert.Contains(t, out, "registered: true")
	assert.NotContains(t, out, "issue:")
}

func TestMergeIntake(t *testing.T) {
	in := domain.Intake{Description: "from file", Answers: domain.Answers{Merchant: "File Co"}}
	mergeIntake(&in, domain.Intake{Network: "amex", Answers: domain.Answers{Amount: "10.00"}})

	assert.Equal(t, "from file", in.Description)
	assert.Equal(t, "amex", in.Network)
	assert.Equal(t, "File Co", in.Answers.Merchant)
	assert.Equal(t, "10.00", in.Answers.Amount)
}
