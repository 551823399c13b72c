package get

import (
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/render"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"pipetrak/internal/report"
	"pipetrak/internal/service/progress"
)

type MockDeltaProvider struct {
	mock.Mock
}

func (m *MockDeltaProvider) BuildDeltaReport(ctx context.Context, projectID int64, dim report.Dimension, rng report.DateRange, cfg report.SortConfig) (*progress.DeltaReportData, error) {
	args := m.Called(ctx, projectID, dim, rng, cfg)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*progress.DeltaReportData), args.Error(1)
}

func (m *MockDeltaProvider) BuildWeldDeltaReport(ctx context.Context, projectID int64, dim report.Dimension, rng report.DateRange) (*progress.WeldDeltaReportData, error) {
	args := m.Called(ctx, projectID, dim, rng)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*progress.WeldDeltaReportData), args.Error(1)
}

func TestParseDateRange(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/api/reports/delta?preset=last_7_days", nil)
	rng, err := ParseDateRange(req)
	require.NoError(t, err)
	assert.Equal(t, report.PresetLast7Days, rng.Preset)

	// no preset means all_time
	req = httptest.NewRequest(http.MethodGet, "/api/reports/delta", nil)
	rng, err = ParseDateRange(req)
	require.NoError(t, err)
	assert.Equal(t, report.PresetAllTime, rng.Preset)

	req = httptest.NewRequest(http.MethodGet, "/api/reports/delta?preset=custom&start=2026-08-01&end=2026-08-15", nil)
	rng, err = ParseDateRange(req)
	require.NoError(t, err)
	require.NotNil(t, rng.Start)
	require.NotNil(t, rng.End)
	assert.Equal(t, "2026-08-01", rng.Start.Format("2006-01-02"))

	// half-filled custom range parses fine, it just stays pending
	req = httptest.NewRequest(http.MethodGet, "/api/reports/delta?preset=custom&start=2026-08-01", nil)
	rng, err = ParseDateRange(req)
	require.NoError(t, err)
	assert.NotNil(t, rng.Start)
	assert.Nil(t, rng.End)

	req = httptest.NewRequest(http.MethodGet, "/api/reports/delta?preset=fortnight", nil)
	_, err = ParseDateRange(req)
	assert.Error(t, err)

	req = httptest.NewRequest(http.MethodGet, "/api/reports/delta?preset=custom&start=08/01/2026", nil)
	_, err = ParseDateRange(req)
	assert.Error(t, err)
}

func TestGetDeltaReport_Success(t *testing.T) {
	mockSvc := new(MockDeltaProvider)

	data := &progress.DeltaReportData{
		ReportID:  "r-2",
		ProjectID: 7,
		DeltaReport: &report.DeltaReport{
			Dimension: report.DimensionArea,
			Rows: []report.DeltaRow{
				{Name: "Area A", WithActivity: 1, MhBudget: 100, DeltaMhEarned: 30},
			},
		},
	}

	mockSvc.On("BuildDeltaReport", mock.Anything, int64(7), report.DimensionArea,
		report.DateRange{Preset: report.PresetLast7Days}, report.SortConfig{}).
		Return(data, nil)

	handler := GetDeltaReport(slog.Default(), mockSvc)

	req := httptest.NewRequest(http.MethodGet, "/api/reports/delta?project_id=7&preset=last_7_days", nil)
	rr := httptest.NewRecorder()

	handler.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)

	var resp progress.DeltaReportData
	err := render.DecodeJSON(strings.NewReader(rr.Body.String()), &resp)
	assert.NoError(t, err)
	require.Len(t, resp.Rows, 1)
	assert.Equal(t, 30.0, resp.Rows[0].DeltaMhEarned)

	mockSvc.AssertExpectations(t)
}

func TestGetDeltaReport_AllTimeRejected(t *testing.T) {
	mockSvc := new(MockDeltaProvider)
	handler := GetDeltaReport(slog.Default(), mockSvc)

	// all_time (also the default with no preset) is the progress report's
	// job, not the delta engine's
	for _, target := range []string{
		"/api/reports/delta?project_id=7",
		"/api/reports/delta?project_id=7&preset=all_time",
	} {
		req := httptest.NewRequest(http.MethodGet, target, nil)
		rr := httptest.NewRecorder()

		handler.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
		assert.Contains(t, rr.Body.String(), "progress report")
	}

	mockSvc.AssertNotCalled(t, "BuildDeltaReport")
}

func TestGetDeltaReport_WelderDimensionRejected(t *testing.T) {
	mockSvc := new(MockDeltaProvider)
	handler := GetDeltaReport(slog.Default(), mockSvc)

	// welder applies to field welds; component entities carry no welder key
	req := httptest.NewRequest(http.MethodGet, "/api/reports/delta?project_id=7&dimension=welder&preset=last_7_days", nil)
	rr := httptest.NewRecorder()

	handler.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Contains(t, rr.Body.String(), "invalid dimension")

	mockSvc.AssertNotCalled(t, "BuildDeltaReport")
}

func TestGetWeldDeltaReport_AllTimeRejected(t *testing.T) {
	mockSvc := new(MockDeltaProvider)
	handler := GetWeldDeltaReport(slog.Default(), mockSvc)

	req := httptest.NewRequest(http.MethodGet, "/api/reports/weld-delta?project_id=7&preset=all_time", nil)
	rr := httptest.NewRecorder()

	handler.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)

	mockSvc.AssertNotCalled(t, "BuildWeldDeltaReport")
}

func TestGetDeltaReport_PendingRange(t *testing.T) {
	mockSvc := new(MockDeltaProvider)

	mockSvc.On("BuildDeltaReport", mock.Anything, int64(7), report.DimensionArea, mock.Anything, report.SortConfig{}).
		Return(nil, progress.ErrRangePending)

	handler := GetDeltaReport(slog.Default(), mockSvc)

	req := httptest.NewRequest(http.MethodGet, "/api/reports/delta?project_id=7&preset=custom&start=2026-08-01", nil)
	rr := httptest.NewRecorder()

	handler.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)

	var resp StateResponse
	err := render.DecodeJSON(strings.NewReader(rr.Body.String()), &resp)
	assert.NoError(t, err)
	assert.Equal(t, "pending", resp.Status)
}

func TestGetDeltaReport_NoActivityResetsToAllTime(t *testing.T) {
	mockSvc := new(MockDeltaProvider)

	mockSvc.On("BuildDeltaReport", mock.Anything, int64(7), report.DimensionArea, mock.Anything, report.SortConfig{}).
		Return(nil, report.ErrNoActivity)

	handler := GetDeltaReport(slog.Default(), mockSvc)

	req := httptest.NewRequest(http.MethodGet, "/api/reports/delta?project_id=7&preset=last_30_days", nil)
	rr := httptest.NewRecorder()

	handler.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)

	var resp StateResponse
	err := render.DecodeJSON(strings.NewReader(rr.Body.String()), &resp)
	assert.NoError(t, err)
	assert.Equal(t, "no_activity", resp.Status)
	assert.Equal(t, "all_time", resp.Reset)
}

func TestGetWeldDeltaReport_DefaultsToWelderDimension(t *testing.T) {
	mockSvc := new(MockDeltaProvider)

	data := &progress.WeldDeltaReportData{
		ReportID:  "r-3",
		ProjectID: 7,
		WeldDeltaReport: &report.WeldDeltaReport{
			Dimension: report.DimensionWelder,
			Rows: []report.WeldDeltaRow{
				{Name: "Ortiz", WeldsWithActivity: 2, DeltaWeldCompleteCount: 2},
			},
		},
	}

	mockSvc.On("BuildWeldDeltaReport", mock.Anything, int64(7), report.DimensionWelder,
		report.DateRange{Preset: report.PresetLast7Days}).
		Return(data, nil)

	handler := GetWeldDeltaReport(slog.Default(), mockSvc)

	req := httptest.NewRequest(http.MethodGet, "/api/reports/weld-delta?project_id=7&preset=last_7_days", nil)
	rr := httptest.NewRecorder()

	handler.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)

	var resp progress.WeldDeltaReportData
	err := render.DecodeJSON(strings.NewReader(rr.Body.String()), &resp)
	assert.NoError(t, err)
	require.Len(t, resp.Rows, 1)
	assert.Equal(t, 2, resp.Rows[0].DeltaWeldCompleteCount)

	mockSvc.AssertExpectations(t)
}
