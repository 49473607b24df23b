package service

import (
	"context"

	"github.com/edumark/examly-backend/internal/model"
	"github.com/edumark/examly-backend/internal/repository"
	"github.com/rs/zerolog"
)

// CatalogService handles the subject and class catalogs.
type CatalogService struct {
	catalog *repository.CatalogRepository
	log     zerolog.Logger
}

// NewCatalogService creates a new CatalogService.
func NewCatalogService(catalog *repository.CatalogRepository, log zerolog.Logger) *CatalogService {
	return &CatalogService{
		catalog: catalog,
		log:     log.With().Str("component", "catalog_service").Logger(),
	}
}

// ListSubjects retrieves all subjects.
func (s *CatalogService) ListSubjects(ctx context.Context) ([]model.Subject, error) {
	subjects, err := s.catalog.ListSubjects(ctx)
	if err != nil {
		return nil, storeErr(err)
	}
	return subjects, nil
}

// CreateSubject adds a subject.
func (s *CatalogService) CreateSubject(ctx context.Context, req *model.CreateSubjectRequest) (*model.Subject, error) {
	subject := &model.Subject{Name: req.Name}
	if err := s.catalog.CreateSubject(ctx, subject); err != nil {
		return nil, storeErr(err)
	}
	return subject, nil
}

// ListClasses retrieves all classes.
func (s *CatalogService) ListClasses(ctx context.Context) ([]model.Class, error) {
	classes, err := s.catalog.ListClasses(ctx)
	if err != nil {
		return nil, storeErr(err)
	}
	return classes, nil
}

// CreateClass adds a class.
func (s *CatalogService) CreateClass(ctx context.Context, req *model.CreateClassRequest) (*model.Class, error) {
	class := &model.Class{Name: req.Name, GradeLevel: req.GradeLevel}
	if err := s.catalog.CreateClass(ctx, class); err != nil {
		return nil, storeErr(err)
	}
	return class, nil
}
