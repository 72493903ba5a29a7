package handler

import (
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/ensa-dev/student-records-api/internal/models"
	"github.com/ensa-dev/student-records-api/internal/service"
)

type fakeStudentRepo struct {
	students   map[string]models.Student
	emailToID  map[string]string
	lastFilter models.StudentFilter
}

func (f *fakeStudentRepo) List(ctx context.Context, filter models.StudentFilter) ([]models.Student, error) {
	f.lastFilter = filter
	out := make([]models.Student, 0, len(f.students))
	for _, s := range f.students {
		out = append(out, s)
	}
	return out, nil
}

func (f *fakeStudentRepo) FindByID(ctx context.Context, id string) (*models.Student, error) {
	if s, ok := f.students[id]; ok {
		return &s, nil
	}
	return nil, sql.ErrNoRows
}

func (f *fakeStudentRepo) FindByEmail(ctx context.Context, email string) (*models.Student, error) {
	if id, ok := f.emailToID[email]; ok {
		s := f.students[id]
		return &s, nil
	}
	return nil, sql.ErrNoRows
}

func (f *fakeStudentRepo) ExistsByEmail(ctx context.Context, email string, excludeID string) (bool, error) {
	if id, ok := f.emailToID[email]; ok {
		if excludeID == "" || id != excludeID {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeStudentRepo) Create(ctx context.Context, student *models.Student) error {
	if f.students == nil {
		f.students = make(map[string]models.Student)
	}
	if f.emailToID == nil {
		f.emailToID = make(map[string]string)
	}
	if student.ID == "" {
		student.ID = "generated"
	}
	f.students[student.ID] = *student
	f.emailToID[student.Email] = student.ID
	return nil
}

func (f *fakeStudentRepo) Update(ctx context.Context, student *models.Student) error {
	f.students[student.ID] = *student
	return nil
}

func (f *fakeStudentRepo) Delete(ctx context.Context, id string) error {
	delete(f.students, id)
	return nil
}

type envelope struct {
	Data  json.RawMessage        `json:"data"`
	Error map[string]interface{} `json:"error"`
	Meta  map[string]interface{} `json:"meta"`
}

func newStudentHandler(repo *fakeStudentRepo) *StudentHandler {
	students := service.NewStudentService(repo, nil, nil, zap.NewNop())
	exports := service.NewExportService(repo, zap.NewNop())
	return NewStudentHandler(students, exports)
}

func TestStudentHandlerListForwardsFilters(t *testing.T) {
	gin.SetMode(gin.TestMode)
	repo := &fakeStudentRepo{}
	handler := newStudentHandler(repo)

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodGet, "/students?search=benali&filiere=Informatique&niveau=Master+1", nil)

	handler.List(c)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "benali", repo.lastFilter.Search)
	assert.Equal(t, "Informatique", repo.lastFilter.Filiere)
	assert.Equal(t, "Master 1", repo.lastFilter.Niveau)
}

func TestStudentHandlerCreate(t *testing.T) {
	gin.SetMode(gin.TestMode)
	repo := &fakeStudentRepo{}
	handler := newStudentHandler(repo)

	body := `{"nom":"Benali","prenom":"Fatima","email":"f.benali@student.ma","filiere":"Génie Logiciel","niveau":"2ème année"}`
	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodPost, "/students", strings.NewReader(body))
	c.Request.Header.Set("Content-Type", "application/json")

	handler.Create(c)

	assert.Equal(t, http.StatusCreated, rec.Code)
	var env envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	var created models.Student
	require.NoError(t, json.Unmarshal(env.Data, &created))
	assert.NotEmpty(t, created.ID)
	assert.Equal(t, "Benali", created.Nom)
	assert.Nil(t, created.Telephone)
}

func TestStudentHandlerCreateMalformedBody(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := newStudentHandler(&fakeStudentRepo{})

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodPost, "/students", strings.NewReader("{not json"))
	c.Request.Header.Set("Content-Type", "application/json")

	handler.Create(c)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestStudentHandlerCreateMissingFields(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := newStudentHandler(&fakeStudentRepo{})

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodPost, "/students", strings.NewReader(`{"nom":"Benali"}`))
	c.Request.Header.Set("Content-Type", "application/json")

	handler.Create(c)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestStudentHandlerCreateDuplicateEmail(t *testing.T) {
	gin.SetMode(gin.TestMode)
	repo := &fakeStudentRepo{
		students:  map[string]models.Student{"id1": {ID: "id1", Email: "f.benali@student.ma"}},
		emailToID: map[string]string{"f.benali@student.ma": "id1"},
	}
	handler := newStudentHandler(repo)

	body := `{"nom":"Benali","prenom":"Fatima","email":"f.benali@student.ma","filiere":"Génie Logiciel","niveau":"2ème année"}`
	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodPost, "/students", strings.NewReader(body))
	c.Request.Header.Set("Content-Type", "application/json")

	handler.Create(c)

	assert.Equal(t, http.StatusConflict, rec.Code)
	var env envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	require.NotNil(t, env.Error)
	assert.Equal(t, "CONFLICT", env.Error["code"])
}

func TestStudentHandlerGetNotFound(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := newStudentHandler(&fakeStudentRepo{})

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodGet, "/students/missing", nil)
	c.Params = gin.Params{{Key: "id", Value: "missing"}}

	handler.Get(c)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestStudentHandlerDelete(t *testing.T) {
	gin.SetMode(gin.TestMode)
	repo := &fakeStudentRepo{students: map[string]models.Student{"id1": {ID: "id1", Nom: "Benali"}}}
	handler := newStudentHandler(repo)

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodDelete, "/students/id1", nil)
	c.Params = gin.Params{{Key: "id", Value: "id1"}}

	handler.Delete(c)

	assert.Equal(t, http.StatusOK, rec.Code)
	var env envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	var payload map[string]string
	require.NoError(t, json.Unmarshal(env.Data, &payload))
	assert.Equal(t, "student deleted successfully", payload["message"])
	assert.Empty(t, repo.students)
}

func TestStudentHandlerExportCSV(t *testing.T) {
	gin.SetMode(gin.TestMode)
	repo := &fakeStudentRepo{students: map[string]models.Student{
		"id1": {ID: "id1", Nom: "Benali", Prenom: "Fatima", Email: "f.benali@student.ma", Filiere: "Génie Logiciel", Niveau: "2ème année"},
	}}
	handler := newStudentHandler(repo)

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodGet, "/students/export?format=csv", nil)

	handler.Export(c)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/csv", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "attachment")
	assert.Contains(t, rec.Body.String(), "f.benali@student.ma")
}

func TestStudentHandlerExportRejectsUnknownFormat(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := newStudentHandler(&fakeStudentRepo{})

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodGet, "/students/export?format=xlsx", nil)

	handler.Export(c)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
