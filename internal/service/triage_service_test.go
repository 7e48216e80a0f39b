package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"quickfirstaid/internal/client"
	"quickfirstaid/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const burnAnswer = "```json\n{\"type\":\"Burn\",\"status\":\"Mild\",\"finding\":\"Red skin\",\"first_aid\":[\"Cool under water\",\"Cover loosely\"]}\n```"

func newTestTriage(t *testing.T, vision Completer, now time.Time) *triageService {
	t.Helper()
	svc := NewTriageService(newTestRecords(t), vision, zap.NewNop()).(*triageService)
	svc.now = func() time.Time { return now }
	return svc
}

func TestTriageService_AnalyzeRecordsHistory(t *testing.T) {
	now := time.Date(2026, 3, 7, 10, 0, 0, 0, time.UTC)
	vision := &fakeCompleter{replies: []string{burnAnswer}}
	svc := newTestTriage(t, vision, now)

	resp, err := svc.Analyze(context.Background(), AnalyzeRequest{
		ImageBase64: "data:image/jpeg;base64,QUJD",
		URI:         "file:///photo.jpg",
	})
	require.NoError(t, err)

	assert.Equal(t, "Burn", resp.Finding.Type)
	assert.Equal(t, []string{"Cool under water", "Cover loosely"}, resp.Finding.FirstAid)
	assert.Equal(t, now.UnixMilli(), resp.Entry.ID)
	assert.Equal(t, "3/7/2026", resp.Entry.Date)
	assert.Equal(t, "QUJD", resp.Entry.Base64)
	require.Len(t, resp.History, 1)

	parts := vision.reqs[0].Messages[0].Content.([]client.ContentPart)
	require.Len(t, parts, 2)
	assert.Equal(t, "data:image/jpeg;base64,QUJD", parts[1].ImageURL.URL)
}

func TestTriageService_IDsStayUniqueWithinOneMillisecond(t *testing.T) {
	now := time.Date(2026, 3, 7, 10, 0, 0, 0, time.UTC)
	svc := newTestTriage(t, &fakeCompleter{replies: []string{burnAnswer}}, now)
	ctx := context.Background()

	first, err := svc.Analyze(ctx, AnalyzeRequest{ImageBase64: "QUJD"})
	require.NoError(t, err)
	second, err := svc.Analyze(ctx, AnalyzeRequest{ImageBase64: "REVG"})
	require.NoError(t, err)

	assert.Equal(t, first.Entry.ID+1, second.Entry.ID)
	require.Len(t, second.History, 2)
	assert.Equal(t, second.Entry.ID, second.History[0].ID)
}

func TestTriageService_MalformedAnswerLeavesHistory(t *testing.T) {
	svc := newTestTriage(t, &fakeCompleter{replies: []string{"Sorry, I can't help with that."}}, time.Now())
	ctx := context.Background()

	resp, err := svc.Analyze(ctx, AnalyzeRequest{ImageBase64: "QUJD"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, client.ErrMalformedResult))
	assert.True(t, IsMalformedResult(err))
	assert.Equal(t, models.ResultMalformed, resp.Result.Kind)

	history, err := svc.History(ctx)
	require.NoError(t, err)
	assert.Empty(t, history)
}

func TestTriageService_AnalyzeRequiresImage(t *testing.T) {
	vision := &fakeCompleter{}
	svc := newTestTriage(t, vision, time.Now())

	_, err := svc.Analyze(context.Background(), AnalyzeRequest{ImageBase64: "  "})
	assert.True(t, IsValidationError(err))
	assert.Empty(t, vision.reqs)
}

func TestTriageService_CompareUsesStoredImage(t *testing.T) {
	now := time.Date(2026, 3, 7, 10, 0, 0, 0, time.UTC)
	vision := &fakeCompleter{replies: []string{
		burnAnswer,
		`{"status":"Improving","observations":"Less redness","advice":"Keep it covered"}`,
	}}
	svc := newTestTriage(t, vision, now)
	ctx := context.Background()

	first, err := svc.Analyze(ctx, AnalyzeRequest{ImageBase64: "T0xE"})
	require.NoError(t, err)

	resp, err := svc.Compare(ctx, CompareRequest{PreviousID: first.Entry.ID, ImageBase64: "TkVX"})
	require.NoError(t, err)
	assert.Equal(t, "Improving", resp.Finding.Status)
	assert.Equal(t, "Keep it covered", resp.Finding.Advice)

	parts := vision.reqs[1].Messages[0].Content.([]client.ContentPart)
	require.Len(t, parts, 3)
	assert.Equal(t, "data:image/jpeg;base64,T0xE", parts[1].ImageURL.URL)
	assert.Equal(t, "data:image/jpeg;base64,TkVX", parts[2].ImageURL.URL)

	history, err := svc.History(ctx)
	require.NoError(t, err)
	assert.Len(t, history, 1)
}

func TestTriageService_CompareUnknownEntry(t *testing.T) {
	svc := newTestTriage(t, &fakeCompleter{}, time.Now())

	_, err := svc.Compare(context.Background(), CompareRequest{PreviousID: 42, ImageBase64: "TkVX"})
	assert.ErrorIs(t, err, ErrHistoryEntryNotFound)
}

func TestTriageService_CollaboratorFailure(t *testing.T) {
	cerr := &client.Error{Service: "vision", Op: "complete", StatusCode: 503}
	svc := newTestTriage(t, &fakeCompleter{err: cerr}, time.Now())

	_, err := svc.Analyze(context.Background(), AnalyzeRequest{ImageBase64: "QUJD"})
	assert.True(t, client.IsCollaboratorError(err))
}

func TestScannerService_FillsUnknown(t *testing.T) {
	vision := &fakeCompleter{replies: []string{`{"name":"Ibuprofen","usage":"Pain relief","dosage":""}`}}
	svc := NewScannerService(vision, zap.NewNop())

	resp, err := svc.Scan(context.Background(), "QUJD")
	require.NoError(t, err)
	assert.Equal(t, models.MedicineLabel{Name: "Ibuprofen", Usage: "Pain relief", Dosage: "Unknown", Warning: "Unknown"}, resp.Label)
	require.NotNil(t, vision.reqs[0].Temperature)
	assert.Equal(t, 0.01, *vision.reqs[0].Temperature)
	assert.Equal(t, 500, vision.reqs[0].MaxTokens)
}
