package service

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/disputekit/disputekit-server/internal/catalog"
	"github.com/disputekit/disputekit-server/internal/domain"
	"github.com/disputekit/disputekit-server/internal/letter"
	"github.com/disputekit/disputekit-server/internal/records"
)

// MockIntakeStore is a mock implementation of domain.IntakeStore
type MockIntakeStore struct {
	mock.Mock
}

func (m *MockIntakeStore) Save(ctx context.Context, intake domain.Intake) error {
	args := m.Called(ctx, intake)
	return args.Error(0)
}

func (m *MockIntakeStore) Get(ctx context.Context, sessionID string) (domain.Intake, error) {
	args := m.Called(ctx, sessionID)
	return args.Get(0).(domain.Intake), args.Error(1)
}

// MockRecordStore is a mock implementation of records.Store
type MockRecordStore struct {
	mock.Mock
}

func (m *MockRecordStore) RecordSession(ctx context.Context, session *records.DisputeSession) error {
	args := m.Called(ctx, session)
	return args.Error(0)
}

func (m *MockRecordStore) ListSessions(ctx context.Context, filter records.Filter) ([]*records.DisputeSession, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*records.DisputeSession), args.Error(1)
}

func (m *MockRecordStore) UpdateOutcome(ctx context.Context, sessionID string, outcome records.Outcome) error {
	args := m.Called(ctx, sessionID, outcome)
	return args.Error(0)
}

func (m *MockRecordStore) GrantEntitlement(ctx context.Context, email string) error {
	args := m.Called(ctx, email)
	return args.Error(0)
}

func (m *MockRecordStore) IsEntitled(ctx context.Context, email string) (bool, error) {
	args := m.Called(ctx, email)
	return args.Bool(0), args.Error(1)
}

func (m *MockRecordStore) ExportJSON(ctx context.Context, writer io.Writer) error {
	args := m.Called(ctx, writer)
	return args.Error(0)
}

func (m *MockRecordStore) Close() error {
	return m.Called().Error(0)
}

var fixedNow = time.Date(2024, time.March, 5, 10, 0, 0, 0, time.UTC)

func quietLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetLevel(logrus.FatalLevel)
	return logger
}

func testSnapshot() *catalog.Snapshot {
	c := catalog.New(map[string][]domain.ReasonCodeEntry{
		"visa": {
			{
				Code:                 "10.4",
				Title:                "Other Fraud - Card Absent Environment",
				Category:             "fraud",
				ScenarioPattern:      "did not authorize|card was stolen",
				MatchKeywords:        []string{"fraud", "unauthorized", "stolen card"},
				EvidenceRequirements: []string{"Police report"},
			},
			{
				Code:                 "13.1",
				Title:                "Merchandise/Services Not Received",
				Category:             "consumer dispute",
				ScenarioPattern:      "never received|never arrived",
				MatchKeywords:        []string{"not received", "never arrived", "delivery"},
				EvidenceRequirements: []string{"Proof of order", "Delivery estimate"},
				StrategyTips:         []string{"Ask for tracking"},
			},
		},
		"mastercard": {
			{
				Code:            "4855",
				Title:           "Goods or Services Not Provided",
				Category:        "consumer dispute",
				ScenarioPattern: "order never showed up",
				MatchKeywords:   []string{"delivery"},
			},
		},
	})
	strategies := catalog.NewStrategies(map[string]map[string]domain.RebuttalStrategy{
		"visa": {
			"13.1": {
				CustomerStrategy: "Show the goods never arrived",
				StrategyTips:     []string{"tip one", "tip two"},
			},
		},
	})
	directory := catalog.NewDirectory(
		map[string]domain.BinInfo{"411111": {BIN: "411111", Network: "visa", Issuer: "Chase"}},
		map[string]domain.IssuerContact{"Chase": {Name: "Chase"}},
	)
	return catalog.NewSnapshot(c, strategies, directory)
}

type fixture struct {
	svc      *DisputeService
	sessions *MockIntakeStore
	records  *MockRecordStore
}

func newFixture(t *testing.T, withRecords bool) *fixture {
	t.Helper()
	f := &fixture{sessions: new(MockIntakeStore), records: new(MockRecordStore)}
	opts := []Option{
		WithClock(func() time.Time { return fixedNow }),
		WithIDGenerator(func() string { return "session-1" }),
	}
	if withRecords {
		opts = append(opts, WithRecords(f.records))
	}
	f.svc = NewDisputeService(catalog.NewStaticStore(testSnapshot(), quietLogger()), f.sessions, quietLogger(), opts...)
	t.Cleanup(func() {
		f.sessions.AssertExpectations(t)
		f.records.AssertExpectations(t)
	})
	return f
}

func TestDisputeService_MatchScenario(t *testing.T) {
	f := newFixture(t, false)
	ctx := context.Background()

	result, err := f.svc.MatchScenario(ctx, "", "the package never arrived at my door")
	require.NoError(t, err)
	assert.Equal(t, "visa", result.Network)
	assert.Equal(t, "13.1", result.ReasonCode)
	assert.Equal(t, domain.MethodExact, result.Method)

	result, err = f.svc.MatchScenario(ctx, "mastercard", "order never showed up")
	require.NoError(t, err)
	assert.Equal(t, "4855", result.ReasonCode)

	result, err = f.svc.MatchScenario(ctx, "", "zzz qqq")
	require.NoError(t, err)
	assert.False(t, result.Matched())

	_, err = f.svc.MatchScenario(ctx, "", "   ")
	assert.ErrorIs(t, err, domain.ErrMalformedInput)
}

func TestDisputeService_NotReady(t *testing.T) {
	store := catalog.NewStore(nil, quietLogger())
	svc := NewDisputeService(store, new(MockIntakeStore), quietLogger())

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	assert.False(t, svc.Ready())
	_, err := svc.MatchScenario(ctx, "", "never arrived")
	assert.Error(t, err)
}

func TestDisputeService_Lookups(t *testing.T) {
	f := newFixture(t, false)
	ctx := context.Background()

	entries, err := f.svc.ListReasons(ctx, "visa")
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "10.4", entries[0].Code)

	entries, err = f.svc.ListReasons(ctx, "jcb")
	require.NoError(t, err)
	assert.Empty(t, entries)

	_, err = f.svc.ReasonDetails(ctx, "visa", "99.9")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	strategy, err := f.svc.Strategy(ctx, "visa", "13.1")
	require.NoError(t, err)
	assert.Equal(t, "Show the goods never arrived", strategy.CustomerStrategy)

	packet, err := f.svc.EvidencePacket(ctx, "visa", "13.1")
	require.NoError(t, err)
	assert.Equal(t, 0.8, packet.EstimatedSuccessRate)

	bin, err := f.svc.LookupBin(ctx, "411111")
	require.NoError(t, err)
	assert.Equal(t, "Chase", bin.Issuer)

	_, err = f.svc.LookupBin(ctx, "4111")
	assert.ErrorIs(t, err, domain.ErrMalformedInput)

	_, err = f.svc.IssuerContact(ctx, "chase")
	assert.NoError(t, err)
}

func TestDisputeService_SearchStrategies(t *testing.T) {
	f := newFixture(t, false)

	hits, err := f.svc.SearchStrategies(context.Background(), "never arrived", 0)
	require.NoError(t, err)
	require.NotEmpty(t, hits)
	assert.Equal(t, "13.1", hits[0].Code)
	require.NotNil(t, hits[0].Strategy)
	assert.Equal(t, []string{"tip one", "tip two"}, hits[0].Strategy.StrategyTips)
}

func TestDisputeService_SubmitIntake(t *testing.T) {
	f := newFixture(t, false)

	f.sessions.On("Save", mock.Anything, mock.MatchedBy(func(in domain.Intake) bool {
		return in.SessionID == "session-1" && in.Network == "visa"
	})).Return(nil).Once()

	intake, err := f.svc.SubmitIntake(context.Background(), IntakeRequest{
		Description: "My delivery never arrived",
	})
	require.NoError(t, err)
	assert.Equal(t, "session-1", intake.SessionID)
	assert.Equal(t, fixedNow, intake.CreatedAt)
	assert.Equal(t, []string{"delivery", "never", "arrived"}, intake.Keywords)
	require.Len(t, intake.RecommendedReasons, 1)
	assert.Equal(t, "13.1", intake.RecommendedReasons[0].ReasonCode)
}

func TestDisputeService_SubmitIntake_Validation(t *testing.T) {
	f := newFixture(t, false)

	_, err := f.svc.SubmitIntake(context.Background(), IntakeRequest{Description: " "})
	assert.ErrorIs(t, err, domain.ErrMalformedInput)
}

func TestDisputeService_SubmitIntake_StoreFailure(t *testing.T) {
	f := newFixture(t, false)
	f.sessions.On("Save", mock.Anything, mock.Anything).Return(domain.ErrStoreUnavailable).Once()

	_, err := f.svc.SubmitIntake(context.Background(), IntakeRequest{Description: "charged twice"})
	assert.ErrorIs(t, err, domain.ErrStoreUnavailable)
}

func TestDisputeService_GetIntake(t *testing.T) {
	f := newFixture(t, false)
	f.sessions.On("Get", mock.Anything, "missing").Return(domain.Intake{}, domain.ErrNotFound).Once()

	_, err := f.svc.GetIntake(context.Background(), "missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func storedIntake() domain.Intake {
	return domain.Intake{
		SessionID:   "stored-1",
		Description: "my order never arrived",
		Network:     "visa",
		Answers: domain.Answers{
			Name:            "Pat Doe",
			Merchant:        "Acme",
			Amount:          "49.99",
			TransactionDate: "2024-02-01",
			EvidenceSummary: "order emails",
		},
	}
}

func TestDisputeService_GenerateLetter_FromSession(t *testing.T) {
	f := newFixture(t, true)
	ctx := context.Background()

	f.sessions.On("Get", mock.Anything, "stored-1").Return(storedIntake(), nil).Once()
	f.sessions.On("Save", mock.Anything, mock.MatchedBy(func(in domain.Intake) bool {
		return in.MatchedReason != nil && in.MatchedReason.ReasonCode == "13.1" && in.SuccessScore != nil
	})).Return(nil).Once()
	f.records.On("RecordSession", mock.Anything, mock.MatchedBy(func(s *records.DisputeSession) bool {
		return s.SessionID == "stored-1" && s.ReasonCode == "13.1" && s.Outcome == records.OutcomePending &&
			s.PaywallUnlocked && s.Merchant == "Acme"
	})).Return(nil).Once()

	result, err := f.svc.GenerateLetter(ctx, LetterRequest{SessionID: "stored-1", PaywallUnlocked: true})
	require.NoError(t, err)

	assert.Equal(t, "stored-1", result.SessionID)
	assert.Equal(t, "13.1", result.MatchedReason.ReasonCode)
	assert.Equal(t, 80, result.SuccessScore)
	assert.Equal(t, "March 5, 2024", result.Letter.Header.Date)
	require.Len(t, result.Letter.Exhibits, 2)
	assert.Equal(t, "Proof of order", result.Letter.Exhibits[0].Description)
	assert.Equal(t, []string{"Ask for tracking"}, result.Letter.StrategyTips)
	assert.Contains(t, result.Text, "Exhibit B")
	assert.Contains(t, result.HTML, "Exhibit B")
	assert.NotEmpty(t, result.Letter.CFPBComplaint)
}

func TestDisputeService_GenerateLetter_InlineIntakeRecordsWithNewID(t *testing.T) {
	f := newFixture(t, true)

	f.records.On("RecordSession", mock.Anything, mock.MatchedBy(func(s *records.DisputeSession) bool {
		return s.SessionID == "session-1"
	})).Return(nil).Once()

	intake := storedIntake()
	intake.SessionID = ""
	result, err := f.svc.GenerateLetter(context.Background(), LetterRequest{Intake: &intake})
	require.NoError(t, err)
	assert.Equal(t, "session-1", result.SessionID)
	assert.Empty(t, intake.MatchedReason, "request intake must not be mutated")
}

func TestDisputeService_GenerateLetter_CardBrandSelection(t *testing.T) {
	f := newFixture(t, false)
	snap := testSnapshot()
	visa, _ := snap.Catalog.Get("visa", "13.1")
	mc, _ := snap.Catalog.Get("mastercard", "4855")

	intake := storedIntake()
	intake.SessionID = ""
	intake.Answers.CardBrand = "MasterCard"
	intake.RecommendedReasons = []domain.MatchResult{
		domain.NewMatchResult(visa, domain.MethodKeyword, nil),
		domain.NewMatchResult(mc, domain.MethodKeyword, nil),
	}

	result, err := f.svc.GenerateLetter(context.Background(), LetterRequest{Intake: &intake})
	require.NoError(t, err)
	assert.Equal(t, "mastercard", result.MatchedReason.Network)
	assert.Equal(t, "4855", result.MatchedReason.ReasonCode)

	intake.Answers.CardBrand = "discover"
	result, err = f.svc.GenerateLetter(context.Background(), LetterRequest{Intake: &intake})
	require.NoError(t, err)
	assert.Equal(t, "13.1", result.MatchedReason.ReasonCode)
}

func TestDisputeService_GenerateLetter_RehydratesReason(t *testing.T) {
	f := newFixture(t, false)

	matched := domain.MatchResult{Network: "visa", ReasonCode: "13.1", Method: domain.MethodExact}
	intake := storedIntake()
	intake.SessionID = ""
	intake.MatchedReason = &matched

	result, err := f.svc.GenerateLetter(context.Background(), LetterRequest{Intake: &intake, PaywallUnlocked: true})
	require.NoError(t, err)
	require.NotNil(t, result.MatchedReason.Reason)
	assert.Equal(t, "Proof of order", result.Letter.Exhibits[0].Description)
}

func TestDisputeService_GenerateLetter_SurvivesStoreFailures(t *testing.T) {
	f := newFixture(t, true)

	f.sessions.On("Get", mock.Anything, "stored-1").Return(storedIntake(), nil).Once()
	f.sessions.On("Save", mock.Anything, mock.Anything).Return(domain.ErrStoreUnavailable).Once()
	f.records.On("RecordSession", mock.Anything, mock.Anything).Return(errors.New("disk full")).Once()

	result, err := f.svc.GenerateLetter(context.Background(), LetterRequest{SessionID: "stored-1"})
	require.NoError(t, err)
	assert.Equal(t, "13.1", result.MatchedReason.ReasonCode)
}

func TestDisputeService_GenerateLetter_Errors(t *testing.T) {
	f := newFixture(t, false)
	ctx := context.Background()

	_, err := f.svc.GenerateLetter(ctx, LetterRequest{})
	assert.ErrorIs(t, err, domain.ErrMalformedInput)

	f.sessions.On("Get", mock.Anything, "gone").Return(domain.Intake{}, domain.ErrNotFound).Once()
	_, err = f.svc.GenerateLetter(ctx, LetterRequest{SessionID: "gone"})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestDisputeService_PreviewLetter(t *testing.T) {
	f := newFixture(t, true)

	f.sessions.On("Get", mock.Anything, "stored-1").Return(storedIntake(), nil).Once()

	result, err := f.svc.PreviewLetter(context.Background(), LetterRequest{SessionID: "stored-1", PaywallUnlocked: true})
	require.NoError(t, err)
	assert.False(t, result.Letter.PaywallUnlocked)
	assert.Len(t, result.Letter.Exhibits, 1)
	assert.Empty(t, result.Letter.CFPBComplaint)
	f.sessions.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	f.records.AssertNotCalled(t, "RecordSession", mock.Anything, mock.Anything)
}

func TestDisputeService_Records(t *testing.T) {
	f := newFixture(t, true)
	ctx := context.Background()

	f.records.On("ListSessions", mock.Anything, records.Filter{Network: "visa", Limit: 10}).
		Return([]*records.DisputeSession{{SessionID: "s1"}}, nil).Once()
	list, err := f.svc.ListDisputes(ctx, records.Filter{Network: " VISA ", Limit: 10})
	require.NoError(t, err)
	assert.Len(t, list, 1)

	f.records.On("UpdateOutcome", mock.Anything, "s1", records.OutcomeWon).Return(nil).Once()
	assert.NoError(t, f.svc.UpdateOutcome(ctx, "s1", "Won"))
	assert.ErrorIs(t, f.svc.UpdateOutcome(ctx, "s1", "maybe"), domain.ErrMalformedInput)

	f.records.On("GrantEntitlement", mock.Anything, "pat@example.com").Return(nil).Once()
	assert.NoError(t, f.svc.GrantEntitlement(ctx, "pat@example.com"))
	assert.ErrorIs(t, f.svc.GrantEntitlement(ctx, "nobody"), domain.ErrMalformedInput)

	f.records.On("IsEntitled", mock.Anything, "pat@example.com").Return(true, nil).Once()
	ok, err := f.svc.IsEntitled(ctx, "pat@example.com")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestDisputeService_RecordsDisabled(t *testing.T) {
	f := newFixture(t, false)
	ctx := context.Background()

	_, err := f.svc.ListDisputes(ctx, records.Filter{})
	assert.ErrorIs(t, err, domain.ErrStoreUnavailable)

	ok, err := f.svc.IsEntitled(ctx, "pat@example.com")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestDisputeService_Helpers(t *testing.T) {
	f := newFixture(t, false)

	assert.Equal(t, 0.9, f.svc.EstimateDisputeSuccess(true, true).EstimatedSuccessRate)
	assert.Contains(t, f.svc.ComplaintSummary(letter.ComplaintInput{Merchant: "Acme"}), "Acme")
	assert.Equal(t, 70, f.svc.EstimateSuccessScore(domain.Intake{}))
}
