package update

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/render"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"pipetrak/internal/storage"
)

type MockMilestoneUpdater struct {
	mock.Mock
}

func (m *MockMilestoneUpdater) UpdateMilestone(ctx context.Context, upd storage.MilestoneUpdate) (float64, error) {
	args := m.Called(ctx, upd)
	return args.Get(0).(float64), args.Error(1)
}

func TestUpdateComponentMilestone_Success(t *testing.T) {
	mockSvc := new(MockMilestoneUpdater)

	mockSvc.On("UpdateMilestone", mock.Anything, mock.MatchedBy(func(upd storage.MilestoneUpdate) bool {
		return upd.ComponentID == 1 && upd.MilestoneName == "Install" && upd.Value == 50
	})).Return(40.0, nil)

	handler := UpdateComponentMilestone(slog.Default(), mockSvc)

	body := `{"component_id": 1, "milestone_name": "Install", "value": 50, "updated_by": "foreman"}`
	req := httptest.NewRequest(http.MethodPost, "/api/components/milestone", bytes.NewBufferString(body))
	rr := httptest.NewRecorder()

	handler.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)

	var resp Response
	err := render.DecodeJSON(strings.NewReader(rr.Body.String()), &resp)
	assert.NoError(t, err)
	assert.Equal(t, int64(1), resp.ComponentID)
	assert.Equal(t, 40.0, resp.PercentComplete)
	assert.Equal(t, "ok", resp.Status)

	mockSvc.AssertExpectations(t)
}

func TestUpdateComponentMilestone_InvalidJSON(t *testing.T) {
	mockSvc := new(MockMilestoneUpdater)
	handler := UpdateComponentMilestone(slog.Default(), mockSvc)

	req := httptest.NewRequest(http.MethodPost, "/api/components/milestone", bytes.NewBufferString("{not json"))
	rr := httptest.NewRecorder()

	handler.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	mockSvc.AssertNotCalled(t, "UpdateMilestone")
}

func TestUpdateComponentMilestone_MissingFields(t *testing.T) {
	mockSvc := new(MockMilestoneUpdater)
	handler := UpdateComponentMilestone(slog.Default(), mockSvc)

	req := httptest.NewRequest(http.MethodPost, "/api/components/milestone", bytes.NewBufferString(`{"value": 1}`))
	rr := httptest.NewRecorder()

	handler.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Contains(t, rr.Body.String(), "required")
	mockSvc.AssertNotCalled(t, "UpdateMilestone")
}

func TestUpdateComponentMilestone_NotFound(t *testing.T) {
	mockSvc := new(MockMilestoneUpdater)

	mockSvc.On("UpdateMilestone", mock.Anything, mock.Anything).
		Return(0.0, errors.New("service.progress.UpdateMilestone: component not found"))

	handler := UpdateComponentMilestone(slog.Default(), mockSvc)

	body := `{"component_id": 99, "milestone_name": "Install", "value": 1}`
	req := httptest.NewRequest(http.MethodPost, "/api/components/milestone", bytes.NewBufferString(body))
	rr := httptest.NewRecorder()

	handler.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusNotFound, rr.Code)

	mockSvc.AssertExpectations(t)
}

func TestUpdateComponentMilestone_ValidationError(t *testing.T) {
	mockSvc := new(MockMilestoneUpdater)

	mockSvc.On("UpdateMilestone", mock.Anything, mock.Anything).
		Return(0.0, errors.New("discrete milestone \"Test\" takes 0 or 1, got 0.5"))

	handler := UpdateComponentMilestone(slog.Default(), mockSvc)

	body := `{"component_id": 1, "milestone_name": "Test", "value": 0.5}`
	req := httptest.NewRequest(http.MethodPost, "/api/components/milestone", bytes.NewBufferString(body))
	rr := httptest.NewRecorder()

	handler.ServeHTTP(rr, req)

	var resp Response
	err := render.DecodeJSON(strings.NewReader(rr.Body.String()), &resp)
	assert.NoError(t, err)
	assert.Equal(t, int64(1), resp.ComponentID)
	assert.NotEmpty(t, resp.Error)

	mockSvc.AssertExpectations(t)
}
