package api

import (
	"crypto/subtle"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/disputekit/disputekit-server/internal/domain"
	"github.com/disputekit/disputekit-server/internal/letter"
	"github.com/disputekit/disputekit-server/internal/matcher"
	"github.com/disputekit/disputekit-server/internal/middleware"
	"github.com/disputekit/disputekit-server/internal/records"
	"github.com/disputekit/disputekit-server/internal/service"
)


type matchScenarioRequest struct {
	Network  string `json:"network"`
	Scenario string `json:"scenario"`
}

type matchKeywordsRequest struct {
	Network  string   `json:"network"`
	Keywords []string `json:"keywords"`
	Text     string   `json:"text"`
}

type estimateSuccessRequest struct {
	ConsumerEvidence bool `json:"consumerEvidence"`
	PriorAttempts    bool `json:"priorAttempts"`
}

type updateOutcomeRequest struct {
	Outcome string `json:"outcome" binding:"required"`
}

type grantEntitlementRequest struct {
	Email string `json:"email" binding:"required"`
}

// handleHealth handles health check requests
func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "healthy",
		"timestamp": time.Now(),
		"version":   Version,
	})
}

func (s *Server) handleReady(c *gin.Context) {
	if !s.service.Ready() {
		middleware.AbortWithError(c, http.StatusServiceUnavailable, domain.CodeNotReady, "reason catalog is still loading")
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ready"})
}

func (s *Server) handleMatchScenario(c *gin.Context) {
	var req matchScenarioRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.badRequest(c, err)
		return
	}

	result, err := s.service.MatchScenario(c.Request.Context(), req.Network, req.Scenario)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (s *Server) handleMatchKeywords(c *gin.Context) {
	var req matchKeywordsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.badRequest(c, err)
		return
	}
	keywords := req.Keywords
	if len(keywords) == 0 && req.Text != "" {
		keywords = matcher.ExtractKeywords(req.Text)
	}

	results, err := s.service.MatchKeywords(c.Request.Context(), req.Network, keywords)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, results)
}

func (s *Server) handleListReasons(c *gin.Context) {
	entries, err := s.service.ListReasons(c.Request.Context(), c.Param("network"))
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, entries)
}

func (s *Server) handleReasonDetails(c *gin.Context) {
	entry, err := s.service.ReasonDetails(c.Request.Context(), c.Param("network"), c.Param("code"))
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, entry)
}

func (s *Server) handleStrategy(c *gin.Context) {
	strategy, err := s.service.Strategy(c.Request.Context(), c.Param("network"), c.Param("code"))
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, strategy)
}

func (s *Server) handleSearchStrategy(c *gin.Context) {
	query := strings.TrimSpace(c.Query("query"))
	if query == "" {
		s.respondError(c, domain.NewValidationError("query", "query is required", nil))
		return
	}
	limit := 0
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			s.respondError(c, domain.NewValidationError("limit", "limit must be a non-negative integer", raw))
			return
		}
		limit = n
	}

	hits, err := s.service.SearchStrategies(c.Request.Context(), query, limit)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, hits)
}

func (s *Server) handleSubmitIntake(c *gin.Context) {
	var req service.IntakeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.badRequest(c, err)
		return
	}

	intake, err := s.service.SubmitIntake(c.Request.Context(), req)
	if err != nil {
		s.respondError(c, err)
		return
	}
	recommended := intake.RecommendedReasons
	if recommended == nil {
		recommended = []domain.MatchResult{}
	}
	c.JSON(http.StatusCreated, gin.H{
		"sessionId":          intake.SessionID,
		"recommendedReasons": recommended,
	})
}

func (s *Server) handleGetIntake(c *gin.Context) {
	intake, err := s.service.GetIntake(c.Request.Context(), c.Param("id"))
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, intake)
}

func (s *Server) handleGenerateLetter(c *gin.Context) {
	s.letter(c, false)
}

func (s *Server) handlePreviewLetter(c *gin.Context) {
	s.letter(c, true)
}

func (s *Server) letter(c *gin.Context, preview bool) {
	var req service.LetterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.badRequest(c, err)
		return
	}

	ctx := c.Request.Context()
	if !s.isPlugin(c) {
		req.PaywallUnlocked = false
		if email := middleware.UserEmail(c); email != "" {
			unlocked, err := s.service.IsEntitled(ctx, email)
			if err != nil {
				s.respondError(c, err)
				return
			}
			req.PaywallUnlocked = unlocked
		}
	}

	var result service.LetterResult
	var err error
	if preview {
		result, err = s.service.PreviewLetter(ctx, req)
	} else {
		result, err = s.service.GenerateLetter(ctx, req)
	}
	if err != nil {
		s.respondError(c, err)
		return
	}

	if strings.EqualFold(c.Query("format"), "html") {
		c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(result.HTML))
		return
	}
	c.JSON(http.StatusOK, result)
}

// isPlugin reports whether the request carries the plugin token, in which
// case the paywall flag in the body is trusted verbatim.
func (s *Server) isPlugin(c *gin.Context) bool {
	token := s.configManager.GetServerConfig().PluginToken
	got, ok := strings.CutPrefix(c.GetHeader("Authorization"), "Bearer ")
	return token != "" && ok && subtle.ConstantTimeCompare([]byte(strings.TrimSpace(got)), []byte(token)) == 1
}

func (s *Server) handleEstimateSuccessScore(c *gin.Context) {
	var intake domain.Intake
	if err := c.ShouldBindJSON(&intake); err != nil {
		s.badRequest(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"score": s.service.EstimateSuccessScore(intake)})
}

func (s *Server) handleEstimateSuccess(c *gin.Context) {
	var req estimateSuccessRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.badRequest(c, err)
		return
	}
	c.JSON(http.StatusOK, s.service.EstimateDisputeSuccess(req.ConsumerEvidence, req.PriorAttempts))
}

func (s *Server) handleEvidencePacket(c *gin.Context) {
	packet, err := s.service.EvidencePacket(c.Request.Context(), c.Param("network"), c.Param("code"))
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, packet)
}

func (s *Server) handleComplaintSummary(c *gin.Context) {
	var in letter.ComplaintInput
	if err := c.ShouldBindJSON(&in); err != nil {
		s.badRequest(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"summary": s.service.ComplaintSummary(in)})
}

func (s *Server) handleLookupBin(c *gin.Context) {
	info, err := s.service.LookupBin(c.Request.Context(), c.Param("bin"))
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, info)
}

func (s *Server) handleIssuerContact(c *gin.Context) {
	contact, err := s.service.IssuerContact(c.Request.Context(), c.Param("name"))
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, contact)
}

func (s *Server) handleListDisputes(c *gin.Context) {
	filter := records.Filter{
		Merchant: c.Query("merchant"),
		Network:  c.Query("network"),
	}
	if raw := c.Query("outcome"); raw != "" {
		outcome, ok := records.ParseOutcome(raw)
		if !ok {
			s.respondError(c, domain.NewValidationError("outcome", "unknown outcome", raw))
			return
		}
		filter.Outcome = outcome
	}
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			s.respondError(c, domain.NewValidationError("limit", "limit must be a non-negative integer", raw))
			return
		}
		filter.Limit = n
	}

	sessions, err := s.service.ListDisputes(c.Request.Context(), filter)
	if err != nil {
		s.respondError(c, err)
		return
	}
	if sessions == nil {
		sessions = []*records.DisputeSession{}
	}
	c.JSON(http.StatusOK, gin.H{"disputes": sessions, "count": len(sessions)})
}

func (s *Server) handleExportDisputes(c *gin.Context) {
	c.Header("Content-Type", "application/json")
	c.Header("Content-Disposition", `attachment; filename="disputes.json"`)
	if err := s.service.ExportDisputes(c.Request.Context(), c.Writer); err != nil {
		s.respondError(c, err)
	}
}

func (s *Server) handleUpdateOutcome(c *gin.Context) {
	var req updateOutcomeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.badRequest(c, err)
		return
	}
	sessionID := c.Param("sessionId")
	if err := s.service.UpdateOutcome(c.Request.Context(), sessionID, req.Outcome); err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"sessionId": sessionID, "outcome": strings.ToLower(req.Outcome)})
}

func (s *Server) handleGrantEntitlement(c *gin.Context) {
	var req grantEntitlementRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.badRequest(c, err)
		return
	}
	if err := s.service.GrantEntitlement(c.Request.Context(), req.Email); err != nil {
		s.respondError(c, err)
		return
	}
	resp := gin.H{"email": strings.ToLower(strings.TrimSpace(req.Email)), "entitled": true}
	if s.tokens != nil {
		token, err := s.tokens.Issue(req.Email)
		if err != nil {
			s.respondError(c, err)
			return
		}
		resp["token"] = token
	}
	c.JSON(http.StatusCreated, resp)
}
