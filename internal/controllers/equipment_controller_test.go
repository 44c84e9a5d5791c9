package controllers

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"gmao-system/internal/dto"
	"gmao-system/internal/entities"
	"gmao-system/internal/services"
	apperrors "gmao-system/pkg/errors"
	"gmao-system/pkg/types"
	"gmao-system/pkg/validation"
)

type stubDeletion struct {
	opts   services.DeleteOptions
	called bool
	err    error
}

func (s *stubDeletion) DeleteEquipment(_ context.Context, id uint64, opts services.DeleteOptions) (*dto.DeletionReportDTO, error) {
	s.called = true
	s.opts = opts
	if s.err != nil {
		return nil, s.err
	}
	return &dto.DeletionReportDTO{EquipmentID: id, GroupsDeleted: []uint64{3}}, nil
}

type stubMembership struct {
	services.MembershipServiceInterface
	groupIDs []uint64
	err      error
}

func (s *stubMembership) SetEquipmentGroups(_ context.Context, _ uint64, groupIDs []uint64) ([]entities.EquipmentGroup, error) {
	s.groupIDs = groupIDs
	if s.err != nil {
		return nil, s.err
	}
	res := make([]entities.EquipmentGroup, 0, len(groupIDs))
	for _, id := range groupIDs {
		res = append(res, entities.EquipmentGroup{ID: id})
	}
	return res, nil
}

type stubResources struct{}

func (stubResources) ResolveDocumentsFor(_ context.Context, equipmentID uint64) ([]dto.ResolvedDocumentDTO, error) {
	if equipmentID == 404 {
		return nil, apperrors.ErrNotFound
	}
	return []dto.ResolvedDocumentDTO{{Document: entities.Document{ID: 1, Title: "Manual"}, Source: dto.ResolvedSourceDirect}}, nil
}

func (stubResources) ResolveCreatedPartsFor(context.Context, uint64) ([]dto.ResolvedPartDTO, error) {
	return []dto.ResolvedPartDTO{}, nil
}

type stubTransfer struct{}

func (stubTransfer) Export(context.Context, types.Filter) (*excelize.File, error) {
	f := excelize.NewFile()
	_ = f.SetCellValue("Sheet1", "A1", "ID")
	return f, nil
}

func (stubTransfer) Import(context.Context, io.Reader, string) (*dto.ImportResultDTO, error) {
	return &dto.ImportResultDTO{}, nil
}

type envelope struct {
	Status  bool            `json:"status"`
	Message string          `json:"message"`
	Body    json.RawMessage `json:"body"`
}

func newTestServer(deletion *stubDeletion, membership *stubMembership) *echo.Echo {
	e := echo.New()
	e.Validator = validation.New()
	ctrl := NewEquipmentController(nil, membership, deletion, stubResources{}, stubTransfer{}, zap.NewNop())

	e.DELETE("/api/equipment/:id", ctrl.DeleteEquipment)
	e.PUT("/api/equipment/:id/groups", ctrl.SetGroups)
	e.GET("/api/equipment/:id/documents", ctrl.GetDocuments)
	e.GET("/api/equipment/export", ctrl.Export)
	return e
}

func do(e *echo.Echo, method, target, body string) (*httptest.ResponseRecorder, envelope) {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	var env envelope
	_ = json.Unmarshal(rec.Body.Bytes(), &env)
	return rec, env
}

func TestDeleteEquipment_CascadeByDefault(t *testing.T) {
	deletion := &stubDeletion{}
	e := newTestServer(deletion, &stubMembership{})

	rec, env := do(e, http.MethodDelete, "/api/equipment/7", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, env.Status)
	assert.True(t, deletion.opts.CascadeEmptyGroups)

	var report dto.DeletionReportDTO
	require.NoError(t, json.Unmarshal(env.Body, &report))
	assert.Equal(t, uint64(7), report.EquipmentID)
	assert.Equal(t, []uint64{3}, report.GroupsDeleted)
}

func TestDeleteEquipment_CascadeFalse(t *testing.T) {
	deletion := &stubDeletion{}
	e := newTestServer(deletion, &stubMembership{})

	rec, _ := do(e, http.MethodDelete, "/api/equipment/7?cascade=false", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.False(t, deletion.opts.CascadeEmptyGroups)
}

func TestDeleteEquipment_Errors(t *testing.T) {
	deletion := &stubDeletion{err: apperrors.ErrNotFound}
	e := newTestServer(deletion, &stubMembership{})

	rec, env := do(e, http.MethodDelete, "/api/equipment/7", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.False(t, env.Status)

	rec, _ = do(e, http.MethodDelete, "/api/equipment/abc", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	deletion.called = false
	rec, _ = do(e, http.MethodDelete, "/api/equipment/7?cascade=maybe", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.False(t, deletion.called)
}

func TestSetGroups(t *testing.T) {
	membership := &stubMembership{}
	e := newTestServer(&stubDeletion{}, membership)

	rec, env := do(e, http.MethodPut, "/api/equipment/1/groups", `{"ids":[2,5]}`)
	require.Equal(t, http.StatusOK, rec.Code, env.Message)
	assert.Equal(t, []uint64{2, 5}, membership.groupIDs)

	rec, _ = do(e, http.MethodPut, "/api/equipment/1/groups", `{"ids":[0]}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	membership.err = apperrors.NewInvalidInputError("часть групп из списка не найдена")
	rec, env = do(e, http.MethodPut, "/api/equipment/1/groups", `{"ids":[9]}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.False(t, env.Status)
}

func TestGetDocuments(t *testing.T) {
	e := newTestServer(&stubDeletion{}, &stubMembership{})

	rec, env := do(e, http.MethodGet, "/api/equipment/1/documents", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var docs []dto.ResolvedDocumentDTO
	require.NoError(t, json.Unmarshal(env.Body, &docs))
	require.Len(t, docs, 1)
	assert.Equal(t, "Manual", docs[0].Document.Title)

	rec, _ = do(e, http.MethodGet, "/api/equipment/404/documents", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestExport_XLSXHeaders(t *testing.T) {
	e := newTestServer(&stubDeletion{}, &stubMembership{})

	req := httptest.NewRequest(http.MethodGet, "/api/equipment/export", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", rec.Header().Get(echo.HeaderContentType))
	assert.Contains(t, rec.Header().Get(echo.HeaderContentDisposition), ".xlsx")

	f, err := excelize.OpenReader(rec.Body)
	require.NoError(t, err)
	v, _ := f.GetCellValue("Sheet1", "A1")
	assert.Equal(t, "ID", v)
}
