package payer

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/booking-api/internal/model"
	apperrors "github.com/jwalitptl/booking-api/pkg/errors"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// memService keeps payers in a map and mirrors the store's error kinds
type memService struct {
	payers       map[int64]*model.Payer
	appointments map[int64]int
	nextID       int64
}

func newMemService() *memService {
	return &memService{payers: map[int64]*model.Payer{}, appointments: map[int64]int{}, nextID: 1}
}

func (s *memService) Create(_ context.Context, req *model.CreatePayerRequest) (*model.Payer, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, apperrors.InvalidInput("name is required", nil)
	}
	for _, p := range s.payers {
		if p.Name == name {
			return nil, apperrors.Conflict("a payer with this name already exists", nil)
		}
	}
	p := &model.Payer{Base: model.Base{ID: s.nextID}, Name: name, Active: req.Active == nil || *req.Active}
	s.payers[p.ID] = p
	s.nextID++
	return p, nil
}

func (s *memService) List(_ context.Context, req *model.ListPayersRequest) ([]*model.Payer, error) {
	out := []*model.Payer{}
	for _, p := range s.payers {
		if !req.ActiveOnly || p.Active {
			out = append(out, p)
		}
	}
	return out, nil
}

func (s *memService) Get(_ context.Context, id int64) (*model.Payer, error) {
	if p, ok := s.payers[id]; ok {
		return p, nil
	}
	return nil, apperrors.NotFound("payer", nil)
}

func (s *memService) Update(ctx context.Context, id int64, req *model.UpdatePayerRequest) (*model.Payer, error) {
	p, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if req.Active != nil {
		p.Active = *req.Active
	}
	if req.Name != nil {
		p.Name = *req.Name
	}
	return p, nil
}

func (s *memService) Delete(ctx context.Context, id int64) error {
	p, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if n := s.appointments[id]; n > 0 {
		return apperrors.Conflict("cannot delete payer "+p.Name, nil)
	}
	delete(s.payers, id)
	return nil
}

func do(engine *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)
	return w
}

func newEngine(svc Service) *gin.Engine {
	engine := gin.New()
	api := engine.Group("/api/v1")
	NewHandler(svc).RegisterRoutes(api, api)
	return engine
}

func TestPayerLifecycle(t *testing.T) {
	svc := newMemService()
	engine := newEngine(svc)

	w := do(engine, http.MethodPost, "/api/v1/payers", `{"name":"OSDE"}`)
	require.Equal(t, http.StatusCreated, w.Code)
	var created struct {
		Data model.Payer `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	assert.True(t, created.Data.Active)

	w = do(engine, http.MethodPost, "/api/v1/payers", `{"name":"OSDE"}`)
	assert.Equal(t, http.StatusConflict, w.Code)

	w = do(engine, http.MethodPost, "/api/v1/payers", `{"name":"  "}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(engine, http.MethodPut, "/api/v1/payers/1", `{"active":false}`)
	assert.Equal(t, http.StatusOK, w.Code)

	w = do(engine, http.MethodGet, "/api/v1/payers?active=true", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"success","data":[]}`, w.Body.String())

	w = do(engine, http.MethodGet, "/api/v1/payers/999", "")
	assert.Equal(t, http.StatusNotFound, w.Code)

	svc.appointments[1] = 2
	w = do(engine, http.MethodDelete, "/api/v1/payers/1", "")
	assert.Equal(t, http.StatusConflict, w.Code)
	_, stillThere := svc.payers[1]
	assert.True(t, stillThere)

	svc.appointments[1] = 0
	w = do(engine, http.MethodDelete, "/api/v1/payers/1", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "payer deleted")
}

func TestListPayersBadQuery(t *testing.T) {
	w := do(newEngine(newMemService()), http.MethodGet, "/api/v1/payers?active=maybe", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
