package catalog

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/disputekit/disputekit-server/internal/domain"
)

// ScenarioSeed pairs a reason code with its scenario pattern in the legacy
// scenarios file.
type ScenarioSeed struct {
	ReasonCode      string `json:"reasonCode" yaml:"reasonCode"`
	ScenarioPattern string `json:"scenarioPattern" yaml:"scenarioPattern"`
}

// ImportLegacy converts the legacy {network: {code: entry}} layout into
// per-network lists sorted by code. Scenario patterns from scenarios fill
// entries that lack one.
func ImportLegacy(legacy map[string]map[string]domain.ReasonCodeEntry, scenarios map[string][]ScenarioSeed) map[string][]domain.ReasonCodeEntry {
	out := make(map[string][]domain.ReasonCodeEntry, len(legacy))

	for rawNetwork, byCode := range legacy {
		network := domain.NormalizeNetwork(rawNetwork)

		patterns := make(map[string]string)
		for rawScenarioNetwork, seeds := range scenarios {
			if domain.NormalizeNetwork(rawScenarioNetwork) != network {
				continue
			}
			for _, s := range seeds {
				code := strings.TrimSpace(s.ReasonCode)
				if code != "" && s.ScenarioPattern != "" {
					patterns[code] = s.ScenarioPattern
				}
			}
		}

		codes := make([]string, 0, len(byCode))
		for code := range byCode {
			codes = append(codes, code)
		}
		sort.Strings(codes)

		entries := make([]domain.ReasonCodeEntry, 0, len(codes))
		for _, code := range codes {
			e := byCode[code].Clone()
			if e.Code == "" {
				e.Code = code
			}
			e.Network = network
			if e.ScenarioPattern == "" {
				e.ScenarioPattern = patterns[e.Code]
			}
			entries = append(entries, e)
		}
		out[network] = append(out[network], entries...)
	}
	return out
}

var leadingDays = regexp.MustCompile(`^\s*(\d+)`)

// EnhanceTimeLimits fills the day counts from the leading integer of the
// free-text time limits and returns how many entries changed.
func EnhanceTimeLimits(entries []domain.ReasonCodeEntry) int {
	changed := 0
	for i := range entries {
		e := &entries[i]
		touched := false
		if days, ok := parseLeadingDays(e.TimeLimitIssuer); ok {
			e.TimeLimitIssuerDays = &days
			touched = true
		}
		if days, ok := parseLeadingDays(e.TimeLimitAcquirer); ok {
			e.TimeLimitAcquirerDays = &days
			touched = true
		}
		if e.MatchKeywords == nil {
			e.MatchKeywords = []string{}
		}
		if touched {
			changed++
		}
	}
	return changed
}

func parseLeadingDays(s string) (int, bool) {
	m := leadingDays.FindStringSubmatch(s)
	if m == nil {
		return 0, false
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return 0, false
	}
	return n, true
}

type keywordSeed struct {
	triggers []string
	keywords []string
}

// Checked in order; the first category mentioned wins.
var keywordSeeds = []keywordSeed{
	{[]string{"fraud", "unauthorized", "not present"},
		[]string{"unauthorized", "stolen card", "i didn't do this", "fraudulent charge"}},
	{[]string{"not received", "non-receipt", "not delivered", "missing", "not provided"},
		[]string{"never got it", "missing", "didn't arrive", "didn't receive item", "not delivered"}},
	{[]string{"duplicate", "double", "processed twice"},
		[]string{"charged twice", "billed two times", "duplicate transaction"}},
	{[]string{"credit not processed", "refund not issued"},
		[]string{"no refund", "didn't get my credit", "refund not posted"}},
	{[]string{"not as described", "misrepresentation", "wrong item"},
		[]string{"not as described", "wrong item", "not what i ordered"}},
	{[]string{"services canceled", "subscription", "recurring"},
		[]string{"charged after canceling", "subscription billed again", "recurring charge"}},
	{[]string{"authorization", "declined", "no auth"},
		[]string{"no authorization", "declined but charged", "forced transaction"}},
	{[]string{"expired card"},
		[]string{"card expired", "used expired card"}},
}

// SeedKeywords gives entries without match keywords the keyword set of the
// first category their title or description mentions. Returns the number of
// entries filled.
func SeedKeywords(entries []domain.ReasonCodeEntry) int {
	filled := 0
	for i := range entries {
		e := &entries[i]
		if len(e.MatchKeywords) > 0 {
			continue
		}
		text := strings.ToLower(e.Title + " " + e.Description)
		for _, seed := range keywordSeeds {
			if containsAny(text, seed.triggers) {
				e.MatchKeywords = append([]string(nil), seed.keywords...)
				filled++
				break
			}
		}
	}
	return filled
}

func containsAny(text string, needles []string) bool {
	for _, n := range needles {
		if strings.Contains(text, n) {
			return true
		}
	}
	return false
}

var binColumns = []string{"BIN", "Brand", "Issuer", "Type", "Category", "isoCode2"}

// ConvertBinsCSV reads a BIN list CSV with the header
// BIN,Brand,Issuer,Type,Category,isoCode2 into a directory BIN table.
func ConvertBinsCSV(r io.Reader) (map[string]domain.BinInfo, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%w: empty BIN csv", domain.ErrMalformedInput)
		}
		return nil, fmt.Errorf("reading BIN csv header: %w", err)
	}

	index := make(map[string]int, len(header))
	for i, col := range header {
		index[strings.TrimSpace(strings.TrimPrefix(col, "\ufeff"))] = i
	}
	for _, col := range binColumns {
		if _, ok := index[col]; !ok {
			return nil, fmt.Errorf("%w: BIN csv missing column %q", domain.ErrMalformedInput, col)
		}
	}

	field := func(row []string, col string) string {
		i := index[col]
		if i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}

	bins := make(map[string]domain.BinInfo)
	for {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading BIN csv: %w", err)
		}

		bin := field(row, "BIN")
		if bin == "" {
			continue
		}
		bins[bin] = domain.BinInfo{
			BIN:         bin,
			Network:     strings.ToLower(field(row, "Brand")),
			Issuer:      field(row, "Issuer"),
			CardType:    strings.ToLower(field(row, "Type")),
			CardSubType: field(row, "Category"),
			Country:     field(row, "isoCode2"),
		}
	}

	if len(bins) == 0 {
		return nil, fmt.Errorf("%w: no BIN rows found", domain.ErrMalformedInput)
	}
	return bins, nil
}
