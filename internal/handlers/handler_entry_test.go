package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"

	"github.com/opentally/bookkeeping_app/internal/apperrors"
	"github.com/opentally/bookkeeping_app/internal/core/domain"
	portssvc "github.com/opentally/bookkeeping_app/internal/core/ports/services"
	"github.com/opentally/bookkeeping_app/internal/core/workflow"
	"github.com/opentally/bookkeeping_app/internal/dto"
	"github.com/opentally/bookkeeping_app/internal/handlers"
	"github.com/opentally/bookkeeping_app/internal/middleware"
)

// --- Mock EntryService ---
type MockEntryService struct {
	mock.Mock
}

func (m *MockEntryService) CreateEntry(ctx context.Context, req dto.CreateEntryRequest, creatorUserID string) (*domain.JournalEntry, error) {
	args := m.Called(ctx, req, creatorUserID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.JournalEntry), args.Error(1)
}
func (m *MockEntryService) GetEntryByID(ctx context.Context, entryID string, requestingUserID string) (*domain.JournalEntry, error) {
	args := m.Called(ctx, entryID, requestingUserID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.JournalEntry), args.Error(1)
}
func (m *MockEntryService) ListEntries(ctx context.Context, userID string, params dto.ListEntriesParams) (*dto.ListEntriesResponse, error) {
	args := m.Called(ctx, userID, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.ListEntriesResponse), args.Error(1)
}
func (m *MockEntryService) ListEntryAudit(ctx context.Context, entryID string, requestingUserID string) ([]domain.TransitionRecord, error) {
	args := m.Called(ctx, entryID, requestingUserID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.TransitionRecord), args.Error(1)
}
func (m *MockEntryService) UpdateEntry(ctx context.Context, entryID string, req dto.UpdateEntryRequest, requestingUserID string) (*domain.JournalEntry, error) {
	args := m.Called(ctx, entryID, req, requestingUserID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.JournalEntry), args.Error(1)
}
func (m *MockEntryService) DeleteEntry(ctx context.Context, entryID string, expectedVersion int64, requestingUserID string) error {
	args := m.Called(ctx, entryID, expectedVersion, requestingUserID)
	return args.Error(0)
}
func (m *MockEntryService) Transition(ctx context.Context, entryID string, expectedVersion int64, event workflow.Event, actorUserID string, reason string) (*domain.JournalEntry, error) {
	args := m.Called(ctx, entryID, expectedVersion, event, actorUserID, reason)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.JournalEntry), args.Error(1)
}

// Ensure mock implements the interface
var _ portssvc.EntrySvcFacade = (*MockEntryService)(nil)

// --- Test Suite ---
type EntryHandlerTestSuite struct {
	suite.Suite
	router           *gin.Engine
	mockEntryService *MockEntryService
	jwtSecret        string
}

// generateTestToken creates a dummy JWT for testing.
func (suite *EntryHandlerTestSuite) generateTestToken(userID string) string {
	claims := jwt.RegisteredClaims{
		Issuer:    "bka-test",
		Subject:   userID,
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(1 * time.Hour)),
		IssuedAt:  jwt.NewNumericDate(time.Now()),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signedString, err := token.SignedString([]byte(suite.jwtSecret))
	if err != nil {
		suite.FailNow("Failed to sign test token", err.Error())
	}
	return signedString
}

func (suite *EntryHandlerTestSuite) SetupTest() {
	gin.SetMode(gin.TestMode)
	handlers.RegisterCustomValidators()
	suite.router = gin.New()
	suite.jwtSecret = "test-secret-key-that-is-long-enough"

	suite.router.Use(middleware.AuthMiddleware(suite.jwtSecret))

	suite.mockEntryService = new(MockEntryService)

	v1 := suite.router.Group("/api/v1")
	handlers.RegisterEntryRoutes(v1, suite.mockEntryService)
}

// doJSON issues an authenticated JSON request against the test router.
func (suite *EntryHandlerTestSuite) doJSON(method, url, userID string, body any) *httptest.ResponseRecorder {
	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		suite.Require().NoError(err)
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}
	req, _ := http.NewRequest(method, url, reader)
	req.Header.Set("Authorization", "Bearer "+suite.generateTestToken(userID))
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	suite.router.ServeHTTP(w, req)
	return w
}

func sampleEntry(status domain.EntryStatus, version int64) *domain.JournalEntry {
	entryID := uuid.NewString()
	return &domain.JournalEntry{
		EntryID:     entryID,
		EntryDate:   time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC),
		Description: "Office rent",
		Lines: []domain.LineItem{
			{LineID: uuid.NewString(), EntryID: entryID, AccountCode: "6000", DebitAmount: decimal.NewFromInt(900)},
			{LineID: uuid.NewString(), EntryID: entryID, AccountCode: "1000", CreditAmount: decimal.NewFromInt(900)},
		},
		Status:  status,
		Version: version,
	}
}

// --- Test Cases ---

func (suite *EntryHandlerTestSuite) TestCreateEntry_Success() {
	userID := uuid.NewString()
	expected := sampleEntry(domain.StatusDraft, 1)

	suite.mockEntryService.On("CreateEntry",
		mock.Anything,
		mock.AnythingOfType("dto.CreateEntryRequest"),
		userID,
	).Return(expected, nil).Once()

	body := dto.CreateEntryRequest{
		EntryDate:   expected.EntryDate,
		Description: expected.Description,
		Lines: []dto.CreateLineRequest{
			{AccountCode: "6000", DebitAmount: decimal.NewFromInt(900)},
			{AccountCode: "1000", CreditAmount: decimal.NewFromInt(900)},
		},
	}
	w := suite.doJSON(http.MethodPost, "/api/v1/entries", userID, body)

	suite.Equal(http.StatusCreated, w.Code)

	var resp dto.EntryResponse
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	suite.Equal(expected.EntryID, resp.EntryID)
	suite.Equal("DRAFT", resp.Status)
	suite.Equal(int64(1), resp.Version)
	suite.True(resp.Imbalance.IsZero())
	suite.mockEntryService.AssertExpectations(suite.T())
}

func (suite *EntryHandlerTestSuite) TestCreateEntry_MissingLines() {
	userID := uuid.NewString()

	w := suite.doJSON(http.MethodPost, "/api/v1/entries", userID, gin.H{
		"entryDate":   "2025-06-01T00:00:00Z",
		"description": "no lines",
	})

	suite.Equal(http.StatusBadRequest, w.Code)
	suite.mockEntryService.AssertNotCalled(suite.T(), "CreateEntry", mock.Anything, mock.Anything, mock.Anything)
}

func (suite *EntryHandlerTestSuite) TestCreateEntry_Unauthorized() {
	req, _ := http.NewRequest(http.MethodPost, "/api/v1/entries", bytes.NewReader(nil))
	w := httptest.NewRecorder()
	suite.router.ServeHTTP(w, req)

	suite.Equal(http.StatusUnauthorized, w.Code)
}

func (suite *EntryHandlerTestSuite) TestGetEntry_NotFound() {
	userID := uuid.NewString()
	suite.mockEntryService.On("GetEntryByID", mock.Anything, "missing", userID).
		Return(nil, apperrors.ErrNotFound).Once()

	w := suite.doJSON(http.MethodGet, "/api/v1/entries/missing", userID, nil)

	suite.Equal(http.StatusNotFound, w.Code)
}

func (suite *EntryHandlerTestSuite) TestTransition_Success() {
	userID := uuid.NewString()
	expected := sampleEntry(domain.StatusPending, 2)

	suite.mockEntryService.On("Transition",
		mock.Anything,
		expected.EntryID,
		int64(1),
		workflow.EventSubmit,
		userID,
		"",
	).Return(expected, nil).Once()

	url := fmt.Sprintf("/api/v1/entries/%s/transitions", expected.EntryID)
	w := suite.doJSON(http.MethodPost, url, userID, dto.TransitionRequest{
		ExpectedVersion: 1,
		Event:           "SUBMIT",
	})

	suite.Equal(http.StatusOK, w.Code)

	var resp dto.EntryResponse
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	suite.Equal("PENDING", resp.Status)
	suite.Equal(int64(2), resp.Version)
	suite.mockEntryService.AssertExpectations(suite.T())
}

func (suite *EntryHandlerTestSuite) TestTransition_UnknownEventRejectedAtBinding() {
	userID := uuid.NewString()

	w := suite.doJSON(http.MethodPost, "/api/v1/entries/some-id/transitions", userID, gin.H{
		"expectedVersion": 1,
		"event":           "ARCHIVE",
	})

	suite.Equal(http.StatusBadRequest, w.Code)
	suite.mockEntryService.AssertNotCalled(suite.T(), "Transition",
		mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func (suite *EntryHandlerTestSuite) TestTransition_VersionConflict() {
	userID := uuid.NewString()
	entryID := uuid.NewString()

	suite.mockEntryService.On("Transition",
		mock.Anything, entryID, int64(1), workflow.EventApprove, userID, "",
	).Return(nil, fmt.Errorf("%w: entry is stale", apperrors.ErrConflict)).Once()

	url := fmt.Sprintf("/api/v1/entries/%s/transitions", entryID)
	w := suite.doJSON(http.MethodPost, url, userID, dto.TransitionRequest{
		ExpectedVersion: 1,
		Event:           "APPROVE",
	})

	suite.Equal(http.StatusConflict, w.Code)
}

func (suite *EntryHandlerTestSuite) TestTransition_IllegalState() {
	userID := uuid.NewString()
	entryID := uuid.NewString()

	suite.mockEntryService.On("Transition",
		mock.Anything, entryID, int64(3), workflow.EventConfirm, userID, "",
	).Return(nil, fmt.Errorf("%w: CONFIRM is not legal from DRAFT", apperrors.ErrInvalidState)).Once()

	url := fmt.Sprintf("/api/v1/entries/%s/transitions", entryID)
	w := suite.doJSON(http.MethodPost, url, userID, dto.TransitionRequest{
		ExpectedVersion: 3,
		Event:           "CONFIRM",
	})

	suite.Equal(http.StatusUnprocessableEntity, w.Code)
}

func (suite *EntryHandlerTestSuite) TestTransition_Forbidden() {
	userID := uuid.NewString()
	entryID := uuid.NewString()

	suite.mockEntryService.On("Transition",
		mock.Anything, entryID, int64(2), workflow.EventApprove, userID, "",
	).Return(nil, fmt.Errorf("%w: role USER may not APPROVE", apperrors.ErrForbidden)).Once()

	url := fmt.Sprintf("/api/v1/entries/%s/transitions", entryID)
	w := suite.doJSON(http.MethodPost, url, userID, dto.TransitionRequest{
		ExpectedVersion: 2,
		Event:           "APPROVE",
	})

	suite.Equal(http.StatusForbidden, w.Code)
}

func (suite *EntryHandlerTestSuite) TestDeleteEntry_RequiresExpectedVersion() {
	userID := uuid.NewString()

	w := suite.doJSON(http.MethodDelete, "/api/v1/entries/some-id", userID, nil)

	suite.Equal(http.StatusBadRequest, w.Code)
	suite.mockEntryService.AssertNotCalled(suite.T(), "DeleteEntry",
		mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func (suite *EntryHandlerTestSuite) TestDeleteEntry_Success() {
	userID := uuid.NewString()
	entryID := uuid.NewString()

	suite.mockEntryService.On("DeleteEntry", mock.Anything, entryID, int64(2), userID).
		Return(nil).Once()

	url := fmt.Sprintf("/api/v1/entries/%s?expectedVersion=2", entryID)
	w := suite.doJSON(http.MethodDelete, url, userID, nil)

	suite.Equal(http.StatusNoContent, w.Code)
	suite.mockEntryService.AssertExpectations(suite.T())
}

func (suite *EntryHandlerTestSuite) TestListEntries_PassesParams() {
	userID := uuid.NewString()
	expected := &dto.ListEntriesResponse{
		Entries: []dto.EntryResponse{
			{EntryID: uuid.NewString(), Status: "PENDING", Version: 2},
		},
	}

	suite.mockEntryService.On("ListEntries",
		mock.Anything,
		userID,
		mock.MatchedBy(func(p dto.ListEntriesParams) bool {
			return p.Status != nil && *p.Status == "PENDING" && p.Limit == 10
		}),
	).Return(expected, nil).Once()

	w := suite.doJSON(http.MethodGet, "/api/v1/entries?status=PENDING&limit=10", userID, nil)

	suite.Equal(http.StatusOK, w.Code)

	var resp dto.ListEntriesResponse
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	suite.Len(resp.Entries, 1)
	suite.mockEntryService.AssertExpectations(suite.T())
}

func (suite *EntryHandlerTestSuite) TestGetEntryAudit_Success() {
	userID := uuid.NewString()
	entryID := uuid.NewString()
	records := []domain.TransitionRecord{
		{RecordID: uuid.NewString(), EntryID: entryID, Event: "SUBMIT", Actor: userID,
			FromStatus: domain.StatusDraft, ToStatus: domain.StatusPending, OccurredAt: time.Now().UTC()},
	}

	suite.mockEntryService.On("ListEntryAudit", mock.Anything, entryID, userID).
		Return(records, nil).Once()

	w := suite.doJSON(http.MethodGet, fmt.Sprintf("/api/v1/entries/%s/audit", entryID), userID, nil)

	suite.Equal(http.StatusOK, w.Code)

	var resp []dto.TransitionRecordResponse
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	suite.Require().Len(resp, 1)
	suite.Equal("SUBMIT", resp[0].Event)
}

// --- Run Test Suite ---
func TestEntryHandler(t *testing.T) {
	suite.Run(t, new(EntryHandlerTestSuite))
}
