package services

import (
	"context"
	"os"
	"strings"

	"github.com/profactive/backend/internal/models"
	"go.uber.org/zap"
)

const defaultBlogPageSize = 9

// FAQRepository reads the active questions of the FAQ page
type FAQRepository interface {
	GetActive(ctx context.Context, category string) ([]models.FAQ, error)
}

// BlogRepository reads active blog posts page by page
type BlogRepository interface {
	GetActive(ctx context.Context, page, count int) ([]models.Blog, error)
}

// DocumentRepository is the interface that wraps methods for documents table data access
type DocumentRepository interface {
	GetActive(ctx context.Context) ([]models.Document, error)
	// Method GetActiveByID returns an active document or models.ErrNotFound.
	GetActiveByID(ctx context.Context, id int) (*models.Document, error)
	IncrementDownloads(ctx context.Context, id int) error
}

// FileStorage opens stored media files
type FileStorage interface {
	Open(relPath string) (*os.File, error)
}

type contentService struct {
	faqRepo      FAQRepository
	blogRepo     BlogRepository
	documentRepo DocumentRepository
	storage      FileStorage
	logger       *zap.Logger
}

// NewContentService creates a service for the informational pages
func NewContentService(faqRepo FAQRepository, blogRepo BlogRepository, documentRepo DocumentRepository, storage FileStorage, logger *zap.Logger) *contentService {
	return &contentService{
		faqRepo:      faqRepo,
		blogRepo:     blogRepo,
		documentRepo: documentRepo,
		storage:      storage,
		logger:       logger,
	}
}

// FAQs returns the active questions, optionally of one category
func (s *contentService) FAQs(ctx context.Context, category string) ([]models.FAQ, error) {
	return s.faqRepo.GetActive(ctx, strings.TrimSpace(category))
}

// Blogs returns a page of active posts, newest first
func (s *contentService) Blogs(ctx context.Context, page, count int) ([]models.Blog, error) {
	if page < 1 {
		page = 1
	}
	if count < 1 {
		count = defaultBlogPageSize
	}
	return s.blogRepo.GetActive(ctx, page, count)
}

// Documents returns the active downloadable documents
func (s *contentService) Documents(ctx context.Context) ([]models.Document, error) {
	return s.documentRepo.GetActive(ctx)
}

// OpenDocument opens the file of an active document and counts the download.
// The caller closes the file.
func (s *contentService) OpenDocument(ctx context.Context, id int) (*models.Document, *os.File, error) {
	doc, err := s.documentRepo.GetActiveByID(ctx, id)
	if err != nil {
		return nil, nil, err
	}

	file, err := s.storage.Open(doc.File)
	if err != nil {
		return nil, nil, err
	}

	if err := s.documentRepo.IncrementDownloads(ctx, doc.ID); err != nil {
		s.logger.Warn("failed to count document download", zap.Int("documentID", doc.ID), zap.Error(err))
	}

	return doc, file, nil
}
