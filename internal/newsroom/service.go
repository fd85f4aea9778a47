// Package newsroom implements the authoring and reading workflows on top of
// the store: validation, sanitising, slugs and image handling on save.
package newsroom

import (
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/microcosm-cc/bluemonday"
	"go.uber.org/zap"

	"newsdesk-service/internal/imageopt"
	"newsdesk-service/internal/media"
	"newsdesk-service/internal/store"
)

var (
	ErrNotFound = store.ErrNotFound
	ErrConflict = errors.New("newsroom: already exists")
)

// ValidationError maps field names to messages.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	for field, msg := range e.Fields {
		return fmt.Sprintf("invalid %s: %s", field, msg)
	}
	return "validation failed"
}

func invalid(field, msg string) *ValidationError {
	return &ValidationError{Fields: map[string]string{field: msg}}
}

// Upload is a file received from a client.
type Upload struct {
	Name string
	Data []byte
}

type Service struct {
	store     *store.Store
	media     *media.Storage
	optimizer *imageopt.Optimizer
	validate  *validator.Validate
	rich      *bluemonday.Policy
	plain     *bluemonday.Policy
	logger    *zap.Logger
	now       func() time.Time
}

type Option func(*Service)

func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

func WithLogger(logger *zap.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

func New(st *store.Store, storage *media.Storage, optimizer *imageopt.Optimizer, opts ...Option) *Service {
	rich := bluemonday.UGCPolicy()
	rich.RequireNoFollowOnLinks(true)
	rich.AddTargetBlankToFullyQualifiedLinks(true)
	rich.AllowAttrs("class").OnElements("figure", "span", "p")
	rich.AllowElements("figure", "figcaption")

	s := &Service{
		store:     st,
		media:     storage,
		optimizer: optimizer,
		validate:  newValidator(),
		rich:      rich,
		plain:     bluemonday.StrictPolicy(),
		logger:    zap.NewNop(),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Service) Media() *media.Storage { return s.media }

// storeImage writes an optimized copy of up under prefix. When optimization
// fails, fallback is returned if set; otherwise the upload is stored as is.
func (s *Service) storeImage(prefix string, up *Upload, fallback string) (string, error) {
	asset := s.optimizer.Optimize(up.Name, bytesReader(up.Data))
	if asset == nil {
		if fallback != "" {
			s.logger.Info("keeping previous image", zap.String("upload", up.Name), zap.String("previous", fallback))
			return fallback, nil
		}
		return s.media.Save(prefix, up.Name, up.Data)
	}
	return s.media.Save(prefix, asset.Name, asset.Data)
}

func conflictOr(err error) error {
	if errors.Is(err, store.ErrDuplicate) {
		return fmt.Errorf("%w: %v", ErrConflict, err)
	}
	return err
}
