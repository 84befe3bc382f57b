package leavetype_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"go-hrms/internal/leavetype"
	leavetypeerrors "go-hrms/internal/leavetype/errors"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type apiError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type apiEnvelope struct {
	Ok    bool            `json:"ok"`
	Data  json.RawMessage `json:"data"`
	Error *apiError       `json:"error"`
}

func decodeEnvelope(t *testing.T, w *httptest.ResponseRecorder) apiEnvelope {
	t.Helper()
	var env apiEnvelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	return env
}

type fakeLeaveTypeService struct {
	GetAllFn       func(ctx context.Context) ([]leavetype.LeaveTypeResponse, error)
	GetActiveFn    func(ctx context.Context) ([]leavetype.LeaveTypeResponse, error)
	GetByIDFn      func(ctx context.Context, id uint) (leavetype.LeaveTypeResponse, error)
	CreateFn       func(ctx context.Context, req leavetype.CreateLeaveTypeRequest) (leavetype.LeaveTypeResponse, error)
	UpdateFn       func(ctx context.Context, id uint, req leavetype.UpdateLeaveTypeRequest) (leavetype.LeaveTypeResponse, error)
	SeedDefaultsFn func(ctx context.Context) (int, error)
}

func (f *fakeLeaveTypeService) GetAll(ctx context.Context) ([]leavetype.LeaveTypeResponse, error) {
	return f.GetAllFn(ctx)
}
func (f *fakeLeaveTypeService) GetActive(ctx context.Context) ([]leavetype.LeaveTypeResponse, error) {
	return f.GetActiveFn(ctx)
}
func (f *fakeLeaveTypeService) GetByID(ctx context.Context, id uint) (leavetype.LeaveTypeResponse, error) {
	return f.GetByIDFn(ctx, id)
}
func (f *fakeLeaveTypeService) Create(ctx context.Context, req leavetype.CreateLeaveTypeRequest) (leavetype.LeaveTypeResponse, error) {
	return f.CreateFn(ctx, req)
}
func (f *fakeLeaveTypeService) Update(ctx context.Context, id uint, req leavetype.UpdateLeaveTypeRequest) (leavetype.LeaveTypeResponse, error) {
	return f.UpdateFn(ctx, id, req)
}
func (f *fakeLeaveTypeService) SeedDefaults(ctx context.Context) (int, error) {
	return f.SeedDefaultsFn(ctx)
}

func TestLeaveTypeHandler_GetActive(t *testing.T) {
	gin.SetMode(gin.TestMode)

	svc := &fakeLeaveTypeService{GetActiveFn: func(ctx context.Context) ([]leavetype.LeaveTypeResponse, error) {
		return []leavetype.LeaveTypeResponse{{ID: 1, Name: "Annual Leave", IsActive: true}}, nil
	}}
	h := leavetype.NewHandler(svc)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/leave-types/active", nil)

	h.GetActive(c)

	assert.Equal(t, http.StatusOK, w.Code)
	env := decodeEnvelope(t, w)
	assert.True(t, env.Ok)
	assert.Contains(t, string(env.Data), "Annual Leave")
}

func TestLeaveTypeHandler_GetByID(t *testing.T) {
	gin.SetMode(gin.TestMode)

	t.Run("invalid id", func(t *testing.T) {
		h := leavetype.NewHandler(&fakeLeaveTypeService{})
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		c.Request = httptest.NewRequest(http.MethodGet, "/leave-types/abc", nil)
		c.Params = gin.Params{{Key: "id", Value: "abc"}}

		h.GetByID(c)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, leavetypeerrors.ErrInvalidLeaveTypeID.Code, decodeEnvelope(t, w).Error.Code)
	})

	t.Run("not found", func(t *testing.T) {
		svc := &fakeLeaveTypeService{GetByIDFn: func(ctx context.Context, id uint) (leavetype.LeaveTypeResponse, error) {
			assert.Equal(t, uint(9), id)
			return leavetype.LeaveTypeResponse{}, leavetypeerrors.ErrLeaveTypeNotFound
		}}
		h := leavetype.NewHandler(svc)
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		c.Request = httptest.NewRequest(http.MethodGet, "/leave-types/9", nil)
		c.Params = gin.Params{{Key: "id", Value: "9"}}

		h.GetByID(c)

		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestLeaveTypeHandler_Create(t *testing.T) {
	gin.SetMode(gin.TestMode)

	t.Run("success", func(t *testing.T) {
		svc := &fakeLeaveTypeService{CreateFn: func(ctx context.Context, req leavetype.CreateLeaveTypeRequest) (leavetype.LeaveTypeResponse, error) {
			require.NotNil(t, req.DefaultDaysPerYear)
			return leavetype.LeaveTypeResponse{ID: 10, Name: req.Name, DefaultDaysPerYear: *req.DefaultDaysPerYear}, nil
		}}
		h := leavetype.NewHandler(svc)
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		c.Request = httptest.NewRequest(http.MethodPost, "/leave-types", strings.NewReader(`{"name":"Jury Duty","default_days_per_year":5}`))
		c.Request.Header.Set("Content-Type", "application/json")

		h.Create(c)

		assert.Equal(t, http.StatusCreated, w.Code)
	})

	t.Run("validation error", func(t *testing.T) {
		h := leavetype.NewHandler(&fakeLeaveTypeService{})
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		c.Request = httptest.NewRequest(http.MethodPost, "/leave-types", strings.NewReader(`{"name":"Jury Duty"}`))
		c.Request.Header.Set("Content-Type", "application/json")

		h.Create(c)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.False(t, decodeEnvelope(t, w).Ok)
	})

	t.Run("conflict", func(t *testing.T) {
		svc := &fakeLeaveTypeService{CreateFn: func(ctx context.Context, req leavetype.CreateLeaveTypeRequest) (leavetype.LeaveTypeResponse, error) {
			return leavetype.LeaveTypeResponse{}, leavetypeerrors.ErrLeaveTypeNameExists
		}}
		h := leavetype.NewHandler(svc)
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		c.Request = httptest.NewRequest(http.MethodPost, "/leave-types", strings.NewReader(`{"name":"Annual Leave","default_days_per_year":15}`))
		c.Request.Header.Set("Content-Type", "application/json")

		h.Create(c)

		assert.Equal(t, http.StatusConflict, w.Code)
		assert.Equal(t, "CONFLICT", decodeEnvelope(t, w).Error.Code)
	})
}
