package service

import (
	"context"
	"database/sql"
	"errors"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/ensa-dev/student-records-api/internal/models"
	"github.com/ensa-dev/student-records-api/internal/repository"
	appErrors "github.com/ensa-dev/student-records-api/pkg/errors"
)

type seedUserRepository interface {
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	Create(ctx context.Context, user *models.User) error
}

type seedStudentRepository interface {
	FindByEmail(ctx context.Context, email string) (*models.Student, error)
	Create(ctx context.Context, student *models.Student) error
}

// SeedConfig holds the administrator identity created on first run.
type SeedConfig struct {
	AdminEmail    string
	AdminPassword string
	AdminName     string
}

// SeedResult reports what the initialization run did.
type SeedResult struct {
	Message         string `json:"message"`
	AdminEmail      string `json:"admin_email"`
	StudentsCreated int    `json:"students_created"`
}

// SeedService performs the one-shot database initialization: one
// administrator identity plus five sample students. Re-running is a no-op
// once the administrator exists.
type SeedService struct {
	users    seedUserRepository
	students seedStudentRepository
	logger   *zap.Logger
	config   SeedConfig
}

// NewSeedService constructs the seed service.
func NewSeedService(users seedUserRepository, students seedStudentRepository, logger *zap.Logger, config SeedConfig) *SeedService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SeedService{users: users, students: students, logger: logger, config: config}
}

func sampleStudents() []models.Student {
	str := func(v string) *string { return &v }
	return []models.Student{
		{Nom: "El Amrani", Prenom: "Mohammed", Email: "m.elamrani@student.ma", Filiere: "Informatique", Niveau: "1ère année", Telephone: str("0600000001"), DateNaissance: str("2002-05-15")},
		{Nom: "Benali", Prenom: "Fatima", Email: "f.benali@student.ma", Filiere: "Génie Logiciel", Niveau: "2ème année", Telephone: str("0600000002"), DateNaissance: str("2001-08-22")},
		{Nom: "Idrissi", Prenom: "Youssef", Email: "y.idrissi@student.ma", Filiere: "Réseaux & Systèmes", Niveau: "3ème année", Telephone: str("0600000003"), DateNaissance: str("2000-03-10")},
		{Nom: "Cherkaoui", Prenom: "Zineb", Email: "z.cherkaoui@student.ma", Filiere: "Intelligence Artificielle", Niveau: "Master 1", Telephone: str("0600000004"), DateNaissance: str("1999-11-30")},
		{Nom: "Oualid", Prenom: "Hassan", Email: "h.oualid@student.ma", Filiere: "Cybersécurité", Niveau: "Master 2", Telephone: str("0600000005"), DateNaissance: str("1998-07-19")},
	}
}

// Run initializes the database. Idempotent: when the administrator already
// exists it returns an informational message and touches nothing.
func (s *SeedService) Run(ctx context.Context) (*SeedResult, error) {
	_, err := s.users.FindByEmail(ctx, s.config.AdminEmail)
	if err == nil {
		return &SeedResult{
			Message:    "administrator already exists",
			AdminEmail: s.config.AdminEmail,
		}, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check administrator")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(s.config.AdminPassword), bcrypt.DefaultCost)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to hash administrator password")
	}

	admin := &models.User{
		Email:        s.config.AdminEmail,
		PasswordHash: string(hash),
		Name:         s.config.AdminName,
		Role:         "admin",
	}
	if err := s.users.Create(ctx, admin); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create administrator")
	}

	created := 0
	for _, sample := range sampleStudents() {
		student := sample
		if _, err := s.students.FindByEmail(ctx, student.Email); err == nil {
			continue
		} else if !errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check sample student")
		}
		if err := s.students.Create(ctx, &student); err != nil {
			// A concurrent seed may have inserted the same email.
			if errors.Is(err, repository.ErrDuplicateEmail) {
				continue
			}
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create sample student")
		}
		created++
	}

	s.logger.Info("database seeded", zap.String("admin", admin.Email), zap.Int("students", created))

	return &SeedResult{
		Message:         "database initialized successfully",
		AdminEmail:      admin.Email,
		StudentsCreated: created,
	}, nil
}
