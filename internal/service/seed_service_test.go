package service

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/ensa-dev/student-records-api/internal/models"
)

type fakeSeedUsers struct {
	users map[string]models.User
}

func (f *fakeSeedUsers) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	if u, ok := f.users[email]; ok {
		return &u, nil
	}
	return nil, sql.ErrNoRows
}

func (f *fakeSeedUsers) Create(ctx context.Context, user *models.User) error {
	if f.users == nil {
		f.users = make(map[string]models.User)
	}
	if user.ID == "" {
		user.ID = "admin-id"
	}
	f.users[user.Email] = *user
	return nil
}

type fakeSeedStudents struct {
	students map[string]models.Student
}

func (f *fakeSeedStudents) FindByEmail(ctx context.Context, email string) (*models.Student, error) {
	if s, ok := f.students[email]; ok {
		return &s, nil
	}
	return nil, sql.ErrNoRows
}

func (f *fakeSeedStudents) Create(ctx context.Context, student *models.Student) error {
	if f.students == nil {
		f.students = make(map[string]models.Student)
	}
	f.students[student.Email] = *student
	return nil
}

func testSeedConfig() SeedConfig {
	return SeedConfig{AdminEmail: "admin@school.ma", AdminPassword: "Admin@123", AdminName: "Administrateur"}
}

func TestSeedServiceRun(t *testing.T) {
	users := &fakeSeedUsers{}
	students := &fakeSeedStudents{}
	svc := NewSeedService(users, students, zap.NewNop(), testSeedConfig())

	result, err := svc.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "database initialized successfully", result.Message)
	assert.Equal(t, "admin@school.ma", result.AdminEmail)
	assert.Equal(t, 5, result.StudentsCreated)
	assert.Len(t, students.students, 5)

	admin, ok := users.users["admin@school.ma"]
	require.True(t, ok)
	assert.Equal(t, "admin", admin.Role)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(admin.PasswordHash), []byte("Admin@123")))
}

func TestSeedServiceRunIsIdempotent(t *testing.T) {
	users := &fakeSeedUsers{}
	students := &fakeSeedStudents{}
	svc := NewSeedService(users, students, zap.NewNop(), testSeedConfig())

	_, err := svc.Run(context.Background())
	require.NoError(t, err)

	result, err := svc.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "administrator already exists", result.Message)
	assert.Equal(t, 0, result.StudentsCreated)
	assert.Len(t, students.students, 5)
	assert.Len(t, users.users, 1)
}

func TestSeedServiceRunSkipsExistingStudents(t *testing.T) {
	users := &fakeSeedUsers{}
	students := &fakeSeedStudents{students: map[string]models.Student{
		"m.elamrani@student.ma": {ID: "existing", Email: "m.elamrani@student.ma"},
	}}
	svc := NewSeedService(users, students, zap.NewNop(), testSeedConfig())

	result, err := svc.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 4, result.StudentsCreated)
	assert.Equal(t, "existing", students.students["m.elamrani@student.ma"].ID)
}
