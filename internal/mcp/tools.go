package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/sirupsen/logrus"

	"github.com/disputekit/disputekit-server/internal/domain"
	"github.com/disputekit/disputekit-server/internal/matcher"
	"github.com/disputekit/disputekit-server/internal/service"
)

// MatchScenarioParams defines parameters for the match_scenario tool
type MatchScenarioParams struct {
	Network  string `json:"network,omitempty" jsonschema:"card network to pin the search to: visa, mastercard, amex or discover"`
	Scenario string `json:"scenario" jsonschema:"free-text description of what went wrong with the charge"`
}

// MatchKeywordsParams defines parameters for the match_keywords tool
type MatchKeywordsParams struct {
	Network  string   `json:"network" jsonschema:"card network whose catalog is searched"`
	Keywords []string `json:"keywords,omitempty" jsonschema:"keywords to match against reason code keywords"`
	Text     string   `json:"text,omitempty" jsonschema:"free text to extract keywords from when keywords is empty"`
}

// ReasonParams identifies one reason code.
type ReasonParams struct {
	Network string `json:"network" jsonschema:"card network"`
	Code    string `json:"code" jsonschema:"network reason code, e.g. 13.1 or 4837"`
}

// EstimateScoreParams defines parameters for the estimate_success_score tool
type EstimateScoreParams struct {
	Network         string `json:"network,omitempty" jsonschema:"network of the matched reason code"`
	Code            string `json:"code,omitempty" jsonschema:"matched reason code; its category drives the base score"`
	Category        string `json:"category,omitempty" jsonschema:"reason category when no code is given"`
	EvidenceSummary string `json:"evidence_summary,omitempty" jsonschema:"free-text summary of the cardholder's evidence"`
	Tone            string `json:"tone,omitempty" jsonschema:"letter tone: formal, assertive or polite"`
}

// AssembleLetterParams defines parameters for the assemble_letter tool
type AssembleLetterParams struct {
	Description      string   `json:"description" jsonschema:"what happened, used to pick the reason code"`
	Network          string   `json:"network,omitempty" jsonschema:"card network hint"`
	Code             string   `json:"code,omitempty" jsonschema:"reason code to argue; resolved from the description when empty"`
	Name             string   `json:"name,omitempty"`
	Address          string   `json:"address,omitempty"`
	CityStateZip     string   `json:"city_state_zip,omitempty"`
	Phone            string   `json:"phone,omitempty"`
	Email            string   `json:"email,omitempty"`
	Merchant         string   `json:"merchant,omitempty"`
	Amount           string   `json:"amount,omitempty"`
	TransactionDate  string   `json:"transaction_date,omitempty"`
	CardBrand        string   `json:"card_brand,omitempty"`
	Issuer           string   `json:"issuer,omitempty" jsonschema:"card issuer, selects the dispute mailing address"`
	EvidenceSummary  string   `json:"evidence_summary,omitempty"`
	Evidence         []string `json:"evidence,omitempty" jsonschema:"evidence item descriptions, labelled as exhibits"`
	Tone             string   `json:"tone,omitempty" jsonschema:"formal, assertive or polite"`
	PaywallUnlocked  bool     `json:"paywall_unlocked,omitempty" jsonschema:"include every exhibit, all strategy tips and the CFPB paragraph"`
	StrategyTips     []string `json:"strategy_tips,omitempty"`
	RebuttalStrategy []string `json:"rebuttal_strategy,omitempty" jsonschema:"custom tips replacing the strategy tips when unlocked"`
	Format           string   `json:"format,omitempty" jsonschema:"text (default), html or json"`
}

// registerTools registers every dispute tool with the MCP server.
func (s *LiteServer) registerTools() {
	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "match_scenario",
		Description: "Resolve a free-text dispute scenario to the best matching card network reason code. A miss returns null fields, not an error.",
	}, s.handleMatchScenario)

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "match_keywords",
		Description: "List every reason code of a network whose keywords overlap the given keywords, in catalog order.",
	}, s.handleMatchKeywords)

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "get_reason_details",
		Description: "Return the full catalog entry for a network reason code.",
	}, s.handleReasonDetails)

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "get_rebuttal_strategy",
		Description: "Return the rebuttal strategy, merchant rebuttals and evidence focus for a network reason code.",
	}, s.handleRebuttalStrategy)

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "estimate_success_score",
		Description: "Heuristic success score between 40 and 95. This is a presentation hint, not a prediction.",
	}, s.handleEstimateScore)

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "assemble_letter",
		Description: "Assemble a chargeback dispute letter for the cardholder.",
	}, s.handleAssembleLetter)

	s.logger.WithField("tool_count", 6).Debug("Registered MCP tools")
}

func (s *LiteServer) handleMatchScenario(ctx context.Context, req *mcp.CallToolRequest, params MatchScenarioParams) (*mcp.CallToolResult, any, error) {
	s.logger.WithField("tool", "match_scenario").Debug("Tool invoked")

	result, err := s.service.MatchScenario(ctx, params.Network, params.Scenario)
	if err != nil {
		return errorResult(err), nil, nil
	}
	return jsonResult(result), nil, nil
}

func (s *LiteServer) handleMatchKeywords(ctx context.Context, req *mcp.CallToolRequest, params MatchKeywordsParams) (*mcp.CallToolResult, any, error) {
	s.logger.WithField("tool", "match_keywords").Debug("Tool invoked")

	keywords := params.Keywords
	if len(keywords) == 0 {
		keywords = matcher.ExtractKeywords(params.Text)
	}
	results, err := s.service.MatchKeywords(ctx, params.Network, keywords)
	if err != nil {
		return errorResult(err), nil, nil
	}
	return jsonResult(results), nil, nil
}

func (s *LiteServer) handleReasonDetails(ctx context.Context, req *mcp.CallToolRequest, params ReasonParams) (*mcp.CallToolResult, any, error) {
	s.logger.WithField("tool", "get_reason_details").Debug("Tool invoked")

	entry, err := s.service.ReasonDetails(ctx, params.Network, strings.TrimSpace(params.Code))
	if err != nil {
		return errorResult(err), nil, nil
	}
	return jsonResult(entry), nil, nil
}

func (s *LiteServer) handleRebuttalStrategy(ctx context.Context, req *mcp.CallToolRequest, params ReasonParams) (*mcp.CallToolResult, any, error) {
	s.logger.WithField("tool", "get_rebuttal_strategy").Debug("Tool invoked")

	strategy, err := s.service.Strategy(ctx, params.Network, strings.TrimSpace(params.Code))
	if err != nil {
		return errorResult(err), nil, nil
	}
	return jsonResult(strategy), nil, nil
}

func (s *LiteServer) handleEstimateScore(ctx context.Context, req *mcp.CallToolRequest, params EstimateScoreParams) (*mcp.CallToolResult, any, error) {
	s.logger.WithField("tool", "estimate_success_score").Debug("Tool invoked")

	intake := domain.Intake{
		Tone:    domain.Tone(params.Tone),
		Answers: domain.Answers{EvidenceSummary: params.EvidenceSummary},
	}
	switch {
	case params.Code != "":
		entry, err := s.service.ReasonDetails(ctx, params.Network, params.Code)
		if err != nil {
			return errorResult(err), nil, nil
		}
		matched := domain.NewMatchResult(entry, domain.MethodExact, nil)
		intake.MatchedReason = &matched
	case params.Category != "":
		intake.MatchedReason = &domain.MatchResult{Category: params.Category}
	}

	score := s.service.EstimateSuccessScore(intake)
	return jsonResult(map[string]int{"score": score}), nil, nil
}

func (s *LiteServer) handleAssembleLetter(ctx context.Context, req *mcp.CallToolRequest, params AssembleLetterParams) (*mcp.CallToolResult, any, error) {
	s.logger.WithFields(logrus.Fields{
		"tool":             "assemble_letter",
		"paywall_unlocked": params.PaywallUnlocked,
	}).Debug("Tool invoked")

	intake := domain.Intake{
		Description: params.Description,
		Network:     domain.NormalizeNetwork(params.Network),
		Answers: domain.Answers{
			Name:            params.Name,
			Address:         params.Address,
			CityStateZip:    params.CityStateZip,
			Phone:           params.Phone,
			Email:           params.Email,
			Merchant:        params.Merchant,
			Amount:          params.Amount,
			TransactionDate: params.TransactionDate,
			CardBrand:       params.CardBrand,
			Issuer:          params.Issuer,
			EvidenceSummary: params.EvidenceSummary,
		},
	}
	if params.Code != "" {
		entry, err := s.service.ReasonDetails(ctx, params.Network, params.Code)
		if err != nil {
			return errorResult(err), nil, nil
		}
		matched := domain.NewMatchResult(entry, domain.MethodExact, nil)
		intake.MatchedReason = &matched
	}

	evidence := make([]domain.EvidenceItem, 0, len(params.Evidence))
	for _, e := range params.Evidence {
		evidence = append(evidence, domain.EvidenceItem{Description: e})
	}

	result, err := s.service.GenerateLetter(ctx, service.LetterRequest{
		Intake:           &intake,
		Tone:             domain.Tone(params.Tone),
		PaywallUnlocked:  params.PaywallUnlocked,
		Evidence:         evidence,
		StrategyTips:     params.StrategyTips,
		RebuttalStrategy: params.RebuttalStrategy,
	})
	if err != nil {
		return errorResult(err), nil, nil
	}

	switch strings.ToLower(params.Format) {
	case "html":
		return textResult(result.HTML), nil, nil
	case "json":
		return jsonResult(result), nil, nil
	default:
		return textResult(result.Text), nil, nil
	}
}

func textResult(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: text}},
	}
}

func jsonResult(v interface{}) *mcp.CallToolResult {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return errorResult(fmt.Errorf("failed to encode result: %w", err))
	}
	return textResult(string(data))
}

// errorResult reports a tool failure to the client as "CODE: message".
func errorResult(err error) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		IsError: true,
		Content: []mcp.Content{&mcp.TextContent{Text: fmt.Sprintf("%s: %s", domain.CodeOf(err), err.Error())}},
	}
}
