package identity

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

func newTestHandler() (*Handler, *echo.Echo, *mockCascade) {
	svc, cascade := newTestService()
	return NewHandler(svc), echo.New(), cascade
}

func jsonRequest(e *echo.Echo, method, body string) (echo.Context, *httptest.ResponseRecorder) {
	req := httptest.NewRequest(method, "/", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func statusOf(t *testing.T, err error) int {
	t.Helper()
	he, ok := err.(*echo.HTTPError)
	if !ok {
		t.Fatalf("expected *echo.HTTPError, got %T (%v)", err, err)
	}
	return he.Code
}

func TestHandler_CreatePatient(t *testing.T) {
	h, e, _ := newTestHandler()

	body := `{"name":"Ada Lovelace","age":36,"gender":"female","contact":"555-0100","address":"London"}`
	c, rec := jsonRequest(e, http.MethodPost, body)
	if err := h.CreatePatient(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Errorf("expected 201, got %d", rec.Code)
	}

	var p map[string]interface{}
	json.Unmarshal(rec.Body.Bytes(), &p)
	if p["name"] != "Ada Lovelace" {
		t.Errorf("expected Ada Lovelace, got %v", p["name"])
	}
	for _, key := range []string{"id", "createdAt", "updatedAt"} {
		if _, ok := p[key]; !ok {
			t.Errorf("expected %s in response", key)
		}
	}
}

func TestHandler_CreatePatient_BadRequest(t *testing.T) {
	h, e, _ := newTestHandler()

	c, _ := jsonRequest(e, http.MethodPost, `{"name":"Ada","age":-5,"gender":"female","contact":"1","address":"x"}`)
	err := h.CreatePatient(c)
	if err == nil {
		t.Fatal("expected error for negative age")
	}
	if code := statusOf(t, err); code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", code)
	}
}

func TestHandler_CreatePatient_MalformedJSON(t *testing.T) {
	h, e, _ := newTestHandler()

	c, _ := jsonRequest(e, http.MethodPost, `{"name":`)
	if code := statusOf(t, h.CreatePatient(c)); code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", code)
	}
}

func TestHandler_GetPatient(t *testing.T) {
	h, e, _ := newTestHandler()
	p, _ := h.svc.CreatePatient(context.Background(), validPatientInput())

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues(p.ID.String())

	if err := h.GetPatient(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}
}

func TestHandler_GetPatient_InvalidID(t *testing.T) {
	h, e, _ := newTestHandler()

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	c := e.NewContext(req, httptest.NewRecorder())
	c.SetParamNames("id")
	c.SetParamValues("not-a-uuid")

	if code := statusOf(t, h.GetPatient(c)); code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", code)
	}
}

func TestHandler_GetPatient_NotFound(t *testing.T) {
	h, e, _ := newTestHandler()

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	c := e.NewContext(req, httptest.NewRecorder())
	c.SetParamNames("id")
	c.SetParamValues(uuid.New().String())

	if code := statusOf(t, h.GetPatient(c)); code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", code)
	}
}

func TestHandler_ListPatients_EmptyArray(t *testing.T) {
	h, e, _ := newTestHandler()

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := h.ListPatients(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if strings.TrimSpace(rec.Body.String()) != "[]" {
		t.Errorf("expected empty JSON array, got %s", rec.Body.String())
	}
}

func TestHandler_UpdatePatient(t *testing.T) {
	h, e, _ := newTestHandler()
	p, _ := h.svc.CreatePatient(context.Background(), validPatientInput())

	c, rec := jsonRequest(e, http.MethodPut, `{"address":"Marylebone"}`)
	c.SetParamNames("id")
	c.SetParamValues(p.ID.String())

	if err := h.UpdatePatient(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var got Patient
	json.Unmarshal(rec.Body.Bytes(), &got)
	if got.Address != "Marylebone" || got.Name != "Ada Lovelace" {
		t.Errorf("unexpected update result: %+v", got)
	}
}

func TestHandler_UpdatePatient_NotFound(t *testing.T) {
	h, e, _ := newTestHandler()

	c, _ := jsonRequest(e, http.MethodPut, `{"address":"Marylebone"}`)
	c.SetParamNames("id")
	c.SetParamValues(uuid.New().String())

	if code := statusOf(t, h.UpdatePatient(c)); code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", code)
	}
}

func TestHandler_DeletePatient(t *testing.T) {
	h, e, cascade := newTestHandler()
	cascade.removed = 2
	p, _ := h.svc.CreatePatient(context.Background(), validPatientInput())

	req := httptest.NewRequest(http.MethodDelete, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues(p.ID.String())

	if err := h.DeletePatient(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}
	var resp DeleteResponse
	json.Unmarshal(rec.Body.Bytes(), &resp)
	if resp.Message != "Patient deleted successfully" || resp.AppointmentsDeleted != 2 {
		t.Errorf("unexpected response: %+v", resp)
	}
}

func TestHandler_DeletePatient_NotFound(t *testing.T) {
	h, e, _ := newTestHandler()

	req := httptest.NewRequest(http.MethodDelete, "/", nil)
	c := e.NewContext(req, httptest.NewRecorder())
	c.SetParamNames("id")
	c.SetParamValues(uuid.New().String())

	if code := statusOf(t, h.DeletePatient(c)); code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", code)
	}
}

func TestHandler_CreateDoctor(t *testing.T) {
	h, e, _ := newTestHandler()

	body := `{"name":"Dr. Who","specialization":"Time","experience":0,"contact":"555","email":"who@tardis.org"}`
	c, rec := jsonRequest(e, http.MethodPost, body)
	if err := h.CreateDoctor(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Errorf("expected 201, got %d", rec.Code)
	}
}

func TestHandler_CreateDoctor_MissingExperience(t *testing.T) {
	h, e, _ := newTestHandler()

	body := `{"name":"Dr. Who","specialization":"Time","contact":"555","email":"who@tardis.org"}`
	c, _ := jsonRequest(e, http.MethodPost, body)
	if code := statusOf(t, h.CreateDoctor(c)); code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", code)
	}
}

func TestHandler_DeleteDoctor(t *testing.T) {
	h, e, _ := newTestHandler()
	d, _ := h.svc.CreateDoctor(context.Background(), validDoctorInput())

	req := httptest.NewRequest(http.MethodDelete, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues(d.ID.String())

	if err := h.DeleteDoctor(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var resp DeleteResponse
	json.Unmarshal(rec.Body.Bytes(), &resp)
	if resp.Message != "Doctor deleted successfully" {
		t.Errorf("unexpected message: %s", resp.Message)
	}
}

func TestHandler_RegisterRoutes(t *testing.T) {
	h, e, _ := newTestHandler()
	h.RegisterRoutes(e.Group("/api"))

	want := map[string]bool{
		"GET /api/patients":        false,
		"GET /api/patients/:id":    false,
		"POST /api/patients":       false,
		"PUT /api/patients/:id":    false,
		"DELETE /api/patients/:id": false,
		"GET /api/doctors":         false,
		"DELETE /api/doctors/:id":  false,
	}
	for _, r := range e.Routes() {
		key := r.Method + " " + r.Path
		if _, ok := want[key]; ok {
			want[key] = true
		}
	}
	for route, found := range want {
		if !found {
			t.Errorf("route %s not registered", route)
		}
	}
}

type oversizedBody struct{}

func (oversizedBody) Read([]byte) (int, error) {
	return 0, echo.NewHTTPError(http.StatusRequestEntityTooLarge, "request body exceeds 16 bytes")
}

func TestHandler_CreatePatient_BodyErrors(t *testing.T) {
	h, e, _ := newTestHandler()

	req := httptest.NewRequest(http.MethodPost, "/", oversizedBody{})
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	req.ContentLength = -1
	if code := statusOf(t, h.CreatePatient(e.NewContext(req, httptest.NewRecorder()))); code != http.StatusRequestEntityTooLarge {
		t.Errorf("expected 413 for oversized body, got %d", code)
	}

	c, _ := jsonRequest(e, http.MethodPost, `{"name":`)
	if code := statusOf(t, h.CreatePatient(c)); code != http.StatusBadRequest {
		t.Errorf("expected 400 for malformed body, got %d", code)
	}
}
