package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/ensa-dev/student-records-api/internal/models"
	appErrors "github.com/ensa-dev/student-records-api/pkg/errors"
	"github.com/ensa-dev/student-records-api/pkg/export"
)

type studentLister interface {
	List(ctx context.Context, filter models.StudentFilter) ([]models.Student, error)
}

// ExportResult bundles the rendered document with its HTTP metadata.
type ExportResult struct {
	Content     []byte
	ContentType string
	Filename    string
}

// ExportService renders the filtered roster as CSV or PDF.
type ExportService struct {
	students studentLister
	csv      *export.CSVExporter
	pdf      *export.PDFExporter
	logger   *zap.Logger
	now      func() time.Time
}

// NewExportService constructs the export service.
func NewExportService(students studentLister, logger *zap.Logger) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ExportService{
		students: students,
		csv:      export.NewCSVExporter(),
		pdf:      export.NewPDFExporter(),
		logger:   logger,
		now:      time.Now,
	}
}

var exportHeaders = []string{"nom", "prenom", "email", "filiere", "niveau", "telephone", "adresse", "dateNaissance", "createdAt"}

// Export renders the roster matching the filter in the requested format.
// Supported formats are "csv" (the default) and "pdf".
func (s *ExportService) Export(ctx context.Context, filter models.StudentFilter, format string) (*ExportResult, error) {
	if format == "" {
		format = "csv"
	}
	if format != "csv" && format != "pdf" {
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unsupported export format %q", format))
	}

	students, err := s.students.List(ctx, filter)
	if err != nil {
		return nil, err
	}

	dataset := export.Dataset{Headers: exportHeaders, Rows: make([]map[string]string, 0, len(students))}
	for _, st := range students {
		dataset.Rows = append(dataset.Rows, map[string]string{
			"nom":           st.Nom,
			"prenom":        st.Prenom,
			"email":         st.Email,
			"filiere":       st.Filiere,
			"niveau":        st.Niveau,
			"telephone":     derefOr(st.Telephone, ""),
			"adresse":       derefOr(st.Adresse, ""),
			"dateNaissance": derefOr(st.DateNaissance, ""),
			"createdAt":     st.CreatedAt.UTC().Format(time.RFC3339),
		})
	}

	stamp := s.now().UTC().Format("2006-01-02")
	switch format {
	case "pdf":
		content, err := s.pdf.Render(dataset, "Liste des étudiants")
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render pdf export")
		}
		return &ExportResult{Content: content, ContentType: "application/pdf", Filename: fmt.Sprintf("etudiants-%s.pdf", stamp)}, nil
	default:
		content, err := s.csv.Render(dataset)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render csv export")
		}
		return &ExportResult{Content: content, ContentType: "text/csv", Filename: fmt.Sprintf("etudiants-%s.csv", stamp)}, nil
	}
}

func derefOr(v *string, fallback string) string {
	if v == nil {
		return fallback
	}
	return *v
}
