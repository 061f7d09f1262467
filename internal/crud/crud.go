// Package crud routes player reads and writes to whichever backend is
// active. Exactly one backend is active at a time and switching never
// copies data between them.
package crud

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"roster/internal/models"
	"roster/internal/store"
)

// Kind names a backend.
type Kind string

const (
	KindDB  Kind = "db"
	KindXML Kind = "xml"
)

var ErrUnknownBackend = errors.New("unknown backend")

// ParseKind accepts "db" or "xml" in any case.
func ParseKind(s string) (Kind, error) {
	switch Kind(strings.ToLower(strings.TrimSpace(s))) {
	case KindDB:
		return KindDB, nil
	case KindXML:
		return KindXML, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownBackend, s)
}

// FileBackend is the XML store's extra surface.
type FileBackend interface {
	store.Backend
	SetPath(path string) error
	Path() string
}

// Service is the single entry point for player storage.
type Service struct {
	db     store.Backend
	file   FileBackend
	active Kind
	logger store.Logger
}

type Option func(*Service)

func WithLogger(l store.Logger) Option {
	return func(s *Service) { s.logger = l }
}

// New builds a Service. db may be nil when only the file backend is used;
// activating KindDB then fails with ErrUnknownBackend.
func New(db store.Backend, file FileBackend, active Kind, opts ...Option) (*Service, error) {
	s := &Service{db: db, file: file}
	for _, opt := range opts {
		opt(s)
	}
	if err := s.SetActiveBackend(active); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Service) ActiveBackend() Kind { return s.active }

// SetActiveBackend switches immediately.
func (s *Service) SetActiveBackend(kind Kind) error {
	switch kind {
	case KindDB:
		if s.db == nil {
			return fmt.Errorf("%w: relational backend not configured", ErrUnknownBackend)
		}
	case KindXML:
		if s.file == nil {
			return fmt.Errorf("%w: file backend not configured", ErrUnknownBackend)
		}
	default:
		return fmt.Errorf("%w: %q", ErrUnknownBackend, kind)
	}
	s.active = kind
	s.info("backend selected")
	return nil
}

// SetFileBackendPath repoints the file backend, creating an empty document
// when none exists. The active backend is unchanged.
func (s *Service) SetFileBackendPath(path string) error {
	if s.file == nil {
		return fmt.Errorf("%w: file backend not configured", ErrUnknownBackend)
	}
	if err := s.file.SetPath(path); err != nil {
		return err
	}
	s.info("file backend path changed", "path", path)
	return nil
}

// FileBackendPath reports where the file backend reads and writes.
func (s *Service) FileBackendPath() string {
	if s.file == nil {
		return ""
	}
	return s.file.Path()
}

// Close releases both backends.
func (s *Service) Close() error {
	var errs []error
	if s.db != nil {
		errs = append(errs, s.db.Close())
	}
	if s.file != nil {
		errs = append(errs, s.file.Close())
	}
	return errors.Join(errs...)
}

func (s *Service) backend() store.Backend {
	if s.active == KindXML {
		return s.file
	}
	return s.db
}

// AddRecord stores an already validated player.
func (s *Service) AddRecord(ctx context.Context, p *models.Player) error {
	start := time.Now()
	if err := s.backend().Add(ctx, p); err != nil {
		s.fail("add", err)
		return err
	}
	s.done("add", 1, start)
	return nil
}

// ListAll returns every record from the active backend.
func (s *Service) ListAll(ctx context.Context) ([]models.Player, error) {
	return s.search(ctx, "list", nil)
}

// SearchByNameOrBirth matches a case-insensitive name substring or an
// exact birth date. With neither given every record is returned.
func (s *Service) SearchByNameOrBirth(ctx context.Context, namePart string, birth *models.Date) ([]models.Player, error) {
	return s.search(ctx, "search_name_birth", store.NameOrBirth(namePart, birth))
}

func (s *Service) SearchByPositionOrTeamType(ctx context.Context, pos *models.Position, tt *models.TeamType) ([]models.Player, error) {
	if err := checkEnums(pos, tt); err != nil {
		return nil, err
	}
	return s.search(ctx, "search_position_team_type", store.PositionOrTeamType(pos, tt))
}

func (s *Service) SearchByTeamOrCity(ctx context.Context, team, city string) ([]models.Player, error) {
	return s.search(ctx, "search_team_city", store.TeamOrCity(team, city))
}

// DeleteByNameOrBirth removes matches and returns the count. With no
// filter it does nothing and returns 0.
func (s *Service) DeleteByNameOrBirth(ctx context.Context, namePart string, birth *models.Date) (int, error) {
	return s.delete(ctx, "delete_name_birth", store.NameOrBirth(namePart, birth))
}

func (s *Service) DeleteByPositionOrTeamType(ctx context.Context, pos *models.Position, tt *models.TeamType) (int, error) {
	if err := checkEnums(pos, tt); err != nil {
		return 0, err
	}
	return s.delete(ctx, "delete_position_team_type", store.PositionOrTeamType(pos, tt))
}

func (s *Service) DeleteByTeamOrCity(ctx context.Context, team, city string) (int, error) {
	return s.delete(ctx, "delete_team_city", store.TeamOrCity(team, city))
}

func checkEnums(pos *models.Position, tt *models.TeamType) error {
	if pos != nil && !pos.Valid() {
		return fmt.Errorf("%w: position %q", store.ErrInvalidFilter, string(*pos))
	}
	if tt != nil && !tt.Valid() {
		return fmt.Errorf("%w: team type %q", store.ErrInvalidFilter, string(*tt))
	}
	return nil
}

func (s *Service) search(ctx context.Context, op string, f store.Filter) ([]models.Player, error) {
	start := time.Now()
	out, err := s.backend().Search(ctx, f)
	if err != nil {
		s.fail(op, err)
		return nil, err
	}
	s.done(op, len(out), start)
	return out, nil
}

func (s *Service) delete(ctx context.Context, op string, f store.Filter) (int, error) {
	if f.IsEmpty() {
		return 0, nil
	}
	start := time.Now()
	n, err := s.backend().Delete(ctx, f)
	if err != nil {
		s.fail(op, err)
		return 0, err
	}
	s.done(op, n, start)
	return n, nil
}

func (s *Service) info(msg string, kv ...any) {
	if s.logger == nil {
		return
	}
	s.logger.Info(msg, append([]any{"backend", string(s.active)}, kv...)...)
}

func (s *Service) done(op string, count int, start time.Time) {
	if s.logger == nil {
		return
	}
	s.logger.Debug("crud operation", "backend", string(s.active), "op", op, "count", count,
		"duration_ms", time.Since(start).Milliseconds())
}

func (s *Service) fail(op string, err error) {
	if s.logger == nil {
		return
	}
	s.logger.Error("crud operation failed", "backend", string(s.active), "op", op, "error", err.Error())
}
