// Package controller keeps the loaded roster, pages through it and turns
// raw user input into validated storage calls.
package controller

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"roster/internal/crud"
	"roster/internal/models"
)

const DefaultPageSize = 10

var (
	// ErrValidation is returned by AddPlayer when input fails validation.
	ErrValidation = errors.New("validation failed")
	// ErrInvalidInput is returned for search or delete input that does not
	// parse.
	ErrInvalidInput = errors.New("invalid input")
)

// Page is what the view renders after every change.
type Page struct {
	Players      []models.Player
	CurrentPage  int
	TotalPages   int
	TotalRecords int
}

// View is the presentation side.
type View interface {
	UpdateTable(Page)
	ShowErrors(msg string)
	ShowDeleted(msg string)
}

// Store is the subset of crud.Service the controller drives.
type Store interface {
	ActiveBackend() crud.Kind
	SetActiveBackend(crud.Kind) error
	SetFileBackendPath(path string) error
	AddRecord(ctx context.Context, p *models.Player) error
	ListAll(ctx context.Context) ([]models.Player, error)
	SearchByNameOrBirth(ctx context.Context, namePart string, birth *models.Date) ([]models.Player, error)
	SearchByPositionOrTeamType(ctx context.Context, pos *models.Position, tt *models.TeamType) ([]models.Player, error)
	SearchByTeamOrCity(ctx context.Context, team, city string) ([]models.Player, error)
	DeleteByNameOrBirth(ctx context.Context, namePart string, birth *models.Date) (int, error)
	DeleteByPositionOrTeamType(ctx context.Context, pos *models.Position, tt *models.TeamType) (int, error)
	DeleteByTeamOrCity(ctx context.Context, team, city string) (int, error)
}

// Controller is not safe for concurrent use; it is driven from one event
// loop.
type Controller struct {
	store    Store
	view     View
	today    func() models.Date
	players  []models.Player
	page     int
	pageSize int
}

type Option func(*Controller)

// WithPageSize sets the initial page size; values below 1 are ignored.
func WithPageSize(n int) Option {
	return func(c *Controller) {
		if n >= 1 {
			c.pageSize = n
		}
	}
}

// WithClock overrides "today" for birth date validation.
func WithClock(today func() models.Date) Option {
	return func(c *Controller) { c.today = today }
}

func New(s Store, v View, opts ...Option) *Controller {
	c := &Controller{store: s, view: v, today: models.Today, page: 1, pageSize: DefaultPageSize}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Controller) CurrentPage() int  { return c.page }
func (c *Controller) PageSize() int     { return c.pageSize }
func (c *Controller) TotalRecords() int { return len(c.players) }

// LoadAll reloads every record and clamps the current page.
func (c *Controller) LoadAll(ctx context.Context) error {
	all, err := c.store.ListAll(ctx)
	if err != nil {
		return err
	}
	c.players = all
	if total := c.TotalPages(); c.page > total {
		c.page = total
	}
	if c.page < 1 {
		c.page = 1
	}
	c.refresh()
	return nil
}

// TotalPages is max(1, ceil(records / pageSize)).
func (c *Controller) TotalPages() int {
	return max(1, (len(c.players)+c.pageSize-1)/c.pageSize)
}

// CurrentPageSlice returns the players on the current page.
func (c *Controller) CurrentPageSlice() []models.Player {
	start := (c.page - 1) * c.pageSize
	if start >= len(c.players) {
		return []models.Player{}
	}
	end := min(start+c.pageSize, len(c.players))
	return c.players[start:end]
}

// GoToPage ignores pages outside [1, TotalPages()].
func (c *Controller) GoToPage(n int) {
	if n < 1 || n > c.TotalPages() {
		return
	}
	c.page = n
	c.refresh()
}

func (c *Controller) FirstPage() { c.GoToPage(1) }
func (c *Controller) PrevPage()  { c.GoToPage(c.page - 1) }
func (c *Controller) NextPage()  { c.GoToPage(c.page + 1) }
func (c *Controller) LastPage()  { c.GoToPage(c.TotalPages()) }

// SetPageSize rejects n < 1 without changing state.
func (c *Controller) SetPageSize(n int) bool {
	if n < 1 {
		return false
	}
	c.pageSize = n
	c.page = 1
	c.refresh()
	return true
}

// ChangeDataSource activates kind, resets to page 1 and reloads.
func (c *Controller) ChangeDataSource(ctx context.Context, kind crud.Kind) error {
	if err := c.store.SetActiveBackend(kind); err != nil {
		return err
	}
	c.page = 1
	return c.LoadAll(ctx)
}

// ChangeXMLFile points the file backend at path and activates it. An
// empty path is ignored.
func (c *Controller) ChangeXMLFile(ctx context.Context, path string) error {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil
	}
	if err := c.store.SetFileBackendPath(path); err != nil {
		return err
	}
	return c.ChangeDataSource(ctx, crud.KindXML)
}

func (c *Controller) refresh() {
	if c.view == nil {
		return
	}
	c.view.UpdateTable(Page{
		Players:      c.CurrentPageSlice(),
		CurrentPage:  c.page,
		TotalPages:   c.TotalPages(),
		TotalRecords: len(c.players),
	})
}

// AddPlayer validates in, shows every violation at once and writes only
// when there are none.
func (c *Controller) AddPlayer(ctx context.Context, in PlayerInput) error {
	p, errs := c.parse(in)
	if len(errs) > 0 {
		msg := strings.Join(errs, "\n")
		if c.view != nil {
			c.view.ShowErrors(msg)
		}
		return fmt.Errorf("%w: %s", ErrValidation, strings.Join(errs, "; "))
	}
	if err := c.store.AddRecord(ctx, &p); err != nil {
		return err
	}
	return c.LoadAll(ctx)
}

func (c *Controller) SearchByNameBirth(ctx context.Context, namePart, birth string) ([]models.Player, error) {
	d, err := optionalDate(birth)
	if err != nil {
		return nil, err
	}
	return c.store.SearchByNameOrBirth(ctx, strings.TrimSpace(namePart), d)
}

func (c *Controller) SearchByPositionTeamType(ctx context.Context, position, teamType string) ([]models.Player, error) {
	pos, tt, err := optionalEnums(position, teamType)
	if err != nil {
		return nil, err
	}
	return c.store.SearchByPositionOrTeamType(ctx, pos, tt)
}

func (c *Controller) SearchByTeamCity(ctx context.Context, team, city string) ([]models.Player, error) {
	return c.store.SearchByTeamOrCity(ctx, strings.TrimSpace(team), strings.TrimSpace(city))
}

func (c *Controller) DeleteByNameBirth(ctx context.Context, namePart, birth string) (int, error) {
	d, err := optionalDate(birth)
	if err != nil {
		return 0, err
	}
	n, err := c.store.DeleteByNameOrBirth(ctx, strings.TrimSpace(namePart), d)
	return c.deleted(ctx, n, err)
}

func (c *Controller) DeleteByPositionTeamType(ctx context.Context, position, teamType string) (int, error) {
	pos, tt, err := optionalEnums(position, teamType)
	if err != nil {
		return 0, err
	}
	n, err := c.store.DeleteByPositionOrTeamType(ctx, pos, tt)
	return c.deleted(ctx, n, err)
}

func (c *Controller) DeleteByTeamCity(ctx context.Context, team, city string) (int, error) {
	n, err := c.store.DeleteByTeamOrCity(ctx, strings.TrimSpace(team), strings.TrimSpace(city))
	return c.deleted(ctx, n, err)
}

// deleted reports the outcome and reloads whether or not anything was
// removed.
func (c *Controller) deleted(ctx context.Context, n int, err error) (int, error) {
	if err != nil {
		return 0, err
	}
	if c.view != nil {
		c.view.ShowDeleted(DeletionMessage(n))
	}
	return n, c.LoadAll(ctx)
}

// DeletionMessage is the user-facing summary of a delete.
func DeletionMessage(n int) string {
	switch {
	case n <= 0:
		return "no players found"
	case n == 1:
		return "removed 1 player"
	default:
		return fmt.Sprintf("removed %d players", n)
	}
}

func optionalDate(s string) (*models.Date, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	d, err := models.ParseDate(s)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	return &d, nil
}

func optionalEnums(position, teamType string) (*models.Position, *models.TeamType, error) {
	var pos *models.Position
	var tt *models.TeamType
	if s := strings.TrimSpace(position); s != "" {
		p, ok := models.ParsePosition(s)
		if !ok {
			return nil, nil, fmt.Errorf("%w: position %q", ErrInvalidInput, s)
		}
		pos = &p
	}
	if s := strings.TrimSpace(teamType); s != "" {
		t, ok := models.ParseTeamType(s)
		if !ok {
			return nil, nil, fmt.Errorf("%w: team type %q", ErrInvalidInput, s)
		}
		tt = &t
	}
	return pos, tt, nil
}
