package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/ensa-dev/student-records-api/internal/models"
)

// ErrDuplicateEmail reports that the students.email unique constraint
// rejected a write. The pre-write existence check cannot catch two
// concurrent creates, so the constraint is the authoritative guard.
var ErrDuplicateEmail = errors.New("email already in use")

const studentColumns = "id, nom, prenom, email, filiere, niveau, telephone, adresse, date_naissance, created_at"

// StudentRepository manages persistence for student records.
type StudentRepository struct {
	db *sqlx.DB
}

// NewStudentRepository constructs a StudentRepository.
func NewStudentRepository(db *sqlx.DB) *StudentRepository {
	return &StudentRepository{db: db}
}

// List returns students matching the provided filters, newest first.
func (r *StudentRepository) List(ctx context.Context, filter models.StudentFilter) ([]models.Student, error) {
	conditions := []string{"1=1"}
	var args []interface{}

	if filter.Search != "" {
		idx := len(args) + 1
		conditions = append(conditions, fmt.Sprintf("(LOWER(nom) LIKE $%d OR LOWER(prenom) LIKE $%d OR LOWER(email) LIKE $%d)", idx, idx, idx))
		args = append(args, "%"+strings.ToLower(filter.Search)+"%")
	}
	if filter.Filiere != "" {
		conditions = append(conditions, fmt.Sprintf("filiere = $%d", len(args)+1))
		args = append(args, filter.Filiere)
	}
	if filter.Niveau != "" {
		conditions = append(conditions, fmt.Sprintf("niveau = $%d", len(args)+1))
		args = append(args, filter.Niveau)
	}

	query := fmt.Sprintf("SELECT %s FROM students WHERE %s ORDER BY created_at DESC",
		studentColumns, strings.Join(conditions, " AND "))

	students := []models.Student{}
	if err := r.db.SelectContext(ctx, &students, query, args...); err != nil {
		return nil, fmt.Errorf("list students: %w", err)
	}
	return students, nil
}

// FindByID fetches a student by ID.
func (r *StudentRepository) FindByID(ctx context.Context, id string) (*models.Student, error) {
	query := fmt.Sprintf("SELECT %s FROM students WHERE id = $1 LIMIT 1", studentColumns)
	var student models.Student
	if err := r.db.GetContext(ctx, &student, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find student by id: %w", err)
	}
	return &student, nil
}

// FindByEmail fetches a student by email.
func (r *StudentRepository) FindByEmail(ctx context.Context, email string) (*models.Student, error) {
	query := fmt.Sprintf("SELECT %s FROM students WHERE email = $1 LIMIT 1", studentColumns)
	var student models.Student
	if err := r.db.GetContext(ctx, &student, query, email); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find student by email: %w", err)
	}
	return &student, nil
}

// ExistsByEmail checks if a student with the given email exists, optionally
// excluding an ID (the record being updated).
func (r *StudentRepository) ExistsByEmail(ctx context.Context, email string, excludeID string) (bool, error) {
	query := "SELECT 1 FROM students WHERE email = $1"
	args := []interface{}{email}
	if excludeID != "" {
		query += " AND id <> $2"
		args = append(args, excludeID)
	}
	var exists int
	if err := r.db.GetContext(ctx, &exists, query+" LIMIT 1", args...); err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		return false, fmt.Errorf("check email: %w", err)
	}
	return true, nil
}

// Create inserts a new student record.
func (r *StudentRepository) Create(ctx context.Context, student *models.Student) error {
	if student.ID == "" {
		student.ID = uuid.NewString()
	}
	if student.CreatedAt.IsZero() {
		student.CreatedAt = time.Now().UTC()
	}
	const query = `INSERT INTO students (id, nom, prenom, email, filiere, niveau, telephone, adresse, date_naissance, created_at)
        VALUES (:id, :nom, :prenom, :email, :filiere, :niveau, :telephone, :adresse, :date_naissance, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, student); err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicateEmail
		}
		return fmt.Errorf("create student: %w", err)
	}
	return nil
}

// Update replaces all editable fields of an existing student. The id and
// created_at columns are never touched.
func (r *StudentRepository) Update(ctx context.Context, student *models.Student) error {
	const query = `UPDATE students SET nom = :nom, prenom = :prenom, email = :email, filiere = :filiere, niveau = :niveau,
        telephone = :telephone, adresse = :adresse, date_naissance = :date_naissance WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, student); err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicateEmail
		}
		return fmt.Errorf("update student: %w", err)
	}
	return nil
}

// Delete removes a student row.
func (r *StudentRepository) Delete(ctx context.Context, id string) error {
	const query = `DELETE FROM students WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id); err != nil {
		return fmt.Errorf("delete student: %w", err)
	}
	return nil
}

// CountAll returns the total number of stored students.
func (r *StudentRepository) CountAll(ctx context.Context) (int, error) {
	var total int
	if err := r.db.GetContext(ctx, &total, "SELECT COUNT(*) FROM students"); err != nil {
		return 0, fmt.Errorf("count students: %w", err)
	}
	return total, nil
}

// GroupCount returns per-value row counts for the given field, largest
// groups first. Only filiere and niveau are groupable.
func (r *StudentRepository) GroupCount(ctx context.Context, field string) ([]models.GroupCount, error) {
	allowed := map[string]string{
		"filiere": "filiere",
		"niveau":  "niveau",
	}
	column, ok := allowed[field]
	if !ok {
		return nil, fmt.Errorf("group count: unsupported field %q", field)
	}

	query := fmt.Sprintf("SELECT %s AS value, COUNT(*) AS count FROM students GROUP BY %s ORDER BY count DESC, value ASC", column, column)
	counts := []models.GroupCount{}
	if err := r.db.SelectContext(ctx, &counts, query); err != nil {
		return nil, fmt.Errorf("group count by %s: %w", field, err)
	}
	return counts, nil
}

// Recent returns the newest students up to limit.
func (r *StudentRepository) Recent(ctx context.Context, limit int) ([]models.Student, error) {
	if limit <= 0 {
		limit = 5
	}
	query := fmt.Sprintf("SELECT %s FROM students ORDER BY created_at DESC LIMIT $1", studentColumns)
	students := []models.Student{}
	if err := r.db.SelectContext(ctx, &students, query, limit); err != nil {
		return nil, fmt.Errorf("recent students: %w", err)
	}
	return students, nil
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "23505"
}
