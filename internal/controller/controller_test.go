package controller

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"roster/internal/crud"
	"roster/internal/models"
	"roster/internal/store"
)

type recordingView struct {
	pages   []Page
	errors  []string
	deleted []string
}

func (v *recordingView) UpdateTable(p Page)     { v.pages = append(v.pages, p) }
func (v *recordingView) ShowErrors(msg string)  { v.errors = append(v.errors, msg) }
func (v *recordingView) ShowDeleted(msg string) { v.deleted = append(v.deleted, msg) }

func (v *recordingView) last() Page { return v.pages[len(v.pages)-1] }

var fixedToday = models.NewDate(2024, time.June, 1)

func newController(t *testing.T, opts ...Option) (*Controller, *recordingView, *crud.Service) {
	t.Helper()
	svc, err := crud.New(nil, store.NewXML(filepath.Join(t.TempDir(), "players.xml")), crud.KindXML)
	require.NoError(t, err)
	v := &recordingView{}
	opts = append([]Option{WithClock(func() models.Date { return fixedToday })}, opts...)
	return New(svc, v, opts...), v, svc
}

func validInput(i int) PlayerInput {
	return PlayerInput{
		FullName:     fmt.Sprintf("Player %02d", i),
		BirthDate:    fmt.Sprintf("2000-01-%02d", i%28+1),
		FootballTeam: "Zenit",
		HomeCity:     "Kazan",
		TeamType:     "MAIN",
		Position:     "FORWARD",
	}
}

func TestTotalPagesFormula(t *testing.T) {
	c, _, _ := newController(t)
	for _, size := range []int{1, 3, 10, 25} {
		for count := 0; count <= 60; count++ {
			c.players = make([]models.Player, count)
			c.pageSize = size
			want := (count + size - 1) / size
			if want < 1 {
				want = 1
			}
			assert.Equal(t, want, c.TotalPages(), "count=%d size=%d", count, size)
		}
	}
}

func TestPagesPartitionRecords(t *testing.T) {
	c, _, _ := newController(t)
	c.players = make([]models.Player, 23)
	for i := range c.players {
		c.players[i].ID = int64(i)
	}
	c.pageSize = 5

	var seen []int64
	for p := 1; p <= c.TotalPages(); p++ {
		c.GoToPage(p)
		for _, pl := range c.CurrentPageSlice() {
			seen = append(seen, pl.ID)
		}
	}
	require.Len(t, seen, 23)
	for i, id := range seen {
		assert.Equal(t, int64(i), id)
	}
}

func TestPaginationScenario(t *testing.T) {
	c, v, _ := newController(t)
	ctx := context.Background()
	require.NoError(t, c.LoadAll(ctx))
	assert.Equal(t, 1, c.TotalPages())
	assert.Empty(t, c.CurrentPageSlice())

	for i := 1; i <= 25; i++ {
		require.NoError(t, c.AddPlayer(ctx, validInput(i)))
	}
	assert.Equal(t, 25, c.TotalRecords())
	assert.Equal(t, 3, c.TotalPages())

	c.LastPage()
	assert.Equal(t, 3, c.CurrentPage())
	assert.Len(t, c.CurrentPageSlice(), 5)
	assert.Equal(t, "Player 21", c.CurrentPageSlice()[0].FullName)

	c.GoToPage(4)
	assert.Equal(t, 3, c.CurrentPage())
	c.GoToPage(0)
	assert.Equal(t, 3, c.CurrentPage())

	require.True(t, c.SetPageSize(5))
	assert.Equal(t, 1, c.CurrentPage())
	assert.Equal(t, 5, c.TotalPages())

	got := v.last()
	assert.Equal(t, 1, got.CurrentPage)
	assert.Equal(t, 5, got.TotalPages)
	assert.Equal(t, 25, got.TotalRecords)
	assert.Len(t, got.Players, 5)
}

func TestPageNavigation(t *testing.T) {
	c, _, _ := newController(t, WithPageSize(2))
	c.players = make([]models.Player, 5)

	c.NextPage()
	assert.Equal(t, 2, c.CurrentPage())
	c.NextPage()
	c.NextPage()
	assert.Equal(t, 3, c.CurrentPage())
	c.PrevPage()
	assert.Equal(t, 2, c.CurrentPage())
	c.FirstPage()
	c.PrevPage()
	assert.Equal(t, 1, c.CurrentPage())
}

func TestSetPageSizeRejectsNonPositive(t *testing.T) {
	c, v, _ := newController(t)
	c.players = make([]models.Player, 30)
	c.GoToPage(2)
	before := len(v.pages)

	assert.False(t, c.SetPageSize(0))
	assert.False(t, c.SetPageSize(-1))
	assert.Equal(t, DefaultPageSize, c.PageSize())
	assert.Equal(t, 2, c.CurrentPage())
	assert.Len(t, v.pages, before, "no refresh on rejection")
}

func TestLoadAllClampsPage(t *testing.T) {
	c, _, _ := newController(t, WithPageSize(2))
	ctx := context.Background()
	for i := 1; i <= 6; i++ {
		require.NoError(t, c.AddPlayer(ctx, validInput(i)))
	}
	c.LastPage()
	require.Equal(t, 3, c.CurrentPage())

	_, err := c.DeleteByNameBirth(ctx, "Player 0", "")
	require.NoError(t, err)
	assert.Equal(t, 1, c.CurrentPage())
}

func TestValidateCollectsEverything(t *testing.T) {
	c, _, _ := newController(t)
	errs := c.Validate(PlayerInput{FullName: "  ", BirthDate: "2030-01-01", TeamType: "BENCH", Position: "striker"})
	assert.Equal(t, []string{
		msgNameRequired,
		msgBirthFuture,
		msgTeamRequired,
		msgCityRequired,
		msgTeamTypeBad,
		msgPositionBad,
	}, errs)

	errs = c.Validate(PlayerInput{FullName: "A", BirthDate: "", FootballTeam: "T", HomeCity: "C", TeamType: "n/a", Position: "Вратарь"})
	assert.Equal(t, []string{msgBirthRequired}, errs)

	errs = c.Validate(PlayerInput{FullName: "A", BirthDate: "2001-02-30", FootballTeam: "T", HomeCity: "C", TeamType: "MAIN", Position: "DEFENDER"})
	assert.Equal(t, []string{msgBirthInvalid}, errs)

	today := validInput(1)
	today.BirthDate = fixedToday.String()
	assert.Empty(t, c.Validate(today))
}

func TestValidateEnforcesColumnLimits(t *testing.T) {
	c, _, _ := newController(t)
	in := validInput(1)
	in.FullName = strings.Repeat("Я", models.MaxFullNameLen)
	in.FootballTeam = strings.Repeat("Я", models.MaxTeamLen)
	in.HomeCity = strings.Repeat("Я", models.MaxCityLen)
	assert.Empty(t, c.Validate(in), "limits count characters, not bytes")

	in.FullName += "я"
	in.FootballTeam += "я"
	in.HomeCity += "я"
	assert.Equal(t, []string{msgNameTooLong, msgTeamTooLong, msgCityTooLong}, c.Validate(in))
}

func TestNotApplicableTeamType(t *testing.T) {
	c, _, svc := newController(t)
	ctx := context.Background()

	for _, tt := range []string{"NOT_APPLICABLE", "not_applicable", "n/a", "NA"} {
		in := validInput(1)
		in.TeamType = tt
		assert.Empty(t, c.Validate(in), tt)
	}

	in := validInput(1)
	in.TeamType = "NOT_APPLICABLE"
	require.NoError(t, c.AddPlayer(ctx, in))
	require.NoError(t, c.AddPlayer(ctx, validInput(2)))

	got, err := c.SearchByPositionTeamType(ctx, "", "NOT_APPLICABLE")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, models.TeamNotApplicable, got[0].TeamType)

	n, err := c.DeleteByPositionTeamType(ctx, "", " not_applicable ")
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	all, err := svc.ListAll(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestAddPlayerRejectsInvalidTeamType(t *testing.T) {
	c, v, svc := newController(t)
	ctx := context.Background()
	in := validInput(1)
	in.TeamType = "BENCH"

	err := c.AddPlayer(ctx, in)
	assert.True(t, errors.Is(err, ErrValidation))
	require.Len(t, v.errors, 1)
	assert.Equal(t, msgTeamTypeBad, v.errors[0])

	all, err := svc.ListAll(ctx)
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestAddPlayerJoinsErrors(t *testing.T) {
	c, v, _ := newController(t)
	err := c.AddPlayer(context.Background(), PlayerInput{})
	assert.True(t, errors.Is(err, ErrValidation))
	require.Len(t, v.errors, 1)
	assert.Contains(t, v.errors[0], msgNameRequired+"\n"+msgBirthRequired)
}

func TestAddPlayerRoundTrip(t *testing.T) {
	c, _, svc := newController(t)
	ctx := context.Background()
	in := PlayerInput{FullName: " Ana Petrova ", BirthDate: "1999-03-03", FootballTeam: "Zenit",
		HomeCity: "Kazan", TeamType: "запасной", Position: "midfielder"}
	require.NoError(t, c.AddPlayer(ctx, in))

	all, err := svc.ListAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, models.Player{
		FullName: "Ana Petrova", BirthDate: models.NewDate(1999, time.March, 3), FootballTeam: "Zenit",
		HomeCity: "Kazan", TeamType: models.TeamReserve, Position: models.Midfielder,
	}, all[0])
}

func TestSearchNormalizesInput(t *testing.T) {
	c, _, _ := newController(t)
	ctx := context.Background()
	a := validInput(1)
	a.FullName = "Ana"
	b := validInput(2)
	b.FullName = "Boris"
	b.BirthDate = "1990-05-05"
	b.Position = "GOALKEEPER"
	b.TeamType = "RESERVE"
	b.HomeCity = "Moscow"
	require.NoError(t, c.AddPlayer(ctx, a))
	require.NoError(t, c.AddPlayer(ctx, b))

	got, err := c.SearchByNameBirth(ctx, "  ana ", " 1990-05-05 ")
	require.NoError(t, err)
	assert.Len(t, got, 2)

	got, err = c.SearchByPositionTeamType(ctx, "Вратарь", "")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "Boris", got[0].FullName)

	got, err = c.SearchByTeamCity(ctx, "", " MOSC ")
	require.NoError(t, err)
	require.Len(t, got, 1)

	got, err = c.SearchByTeamCity(ctx, " ", "")
	require.NoError(t, err)
	assert.Len(t, got, 2)

	_, err = c.SearchByPositionTeamType(ctx, "striker", "")
	assert.True(t, errors.Is(err, ErrInvalidInput))
	_, err = c.SearchByNameBirth(ctx, "", "yesterday")
	assert.True(t, errors.Is(err, ErrInvalidInput))
}

func TestDeleteReportsAndReloads(t *testing.T) {
	c, v, _ := newController(t)
	ctx := context.Background()
	for i := 1; i <= 3; i++ {
		require.NoError(t, c.AddPlayer(ctx, validInput(i)))
	}
	loads := len(v.pages)

	n, err := c.DeleteByTeamCity(ctx, "", "")
	require.NoError(t, err)
	assert.Zero(t, n)
	assert.Equal(t, []string{"no players found"}, v.deleted)
	assert.Greater(t, len(v.pages), loads, "reloads even when nothing was removed")

	n, err = c.DeleteByPositionTeamType(ctx, "forward", "")
	require.NoError(t, err)
	assert.Equal(t, 3, n)
	assert.Equal(t, "removed 3 players", v.deleted[1])
	assert.Zero(t, c.TotalRecords())

	_, err = c.DeleteByPositionTeamType(ctx, "", "bench")
	assert.True(t, errors.Is(err, ErrInvalidInput))
	assert.Len(t, v.deleted, 2)
}

func TestDeletionMessage(t *testing.T) {
	assert.Equal(t, "no players found", DeletionMessage(0))
	assert.Equal(t, "removed 1 player", DeletionMessage(1))
	assert.Equal(t, "removed 12 players", DeletionMessage(12))
}

func TestChangeXMLFileResetsPage(t *testing.T) {
	c, v, svc := newController(t, WithPageSize(1))
	ctx := context.Background()
	for i := 1; i <= 3; i++ {
		require.NoError(t, c.AddPlayer(ctx, validInput(i)))
	}
	c.LastPage()
	require.Equal(t, 3, c.CurrentPage())

	require.NoError(t, c.ChangeXMLFile(ctx, "  "))
	assert.Equal(t, 3, c.CurrentPage(), "blank path ignored")

	path := filepath.Join(t.TempDir(), "other.xml")
	require.NoError(t, c.ChangeXMLFile(ctx, path))
	assert.Equal(t, 1, c.CurrentPage())
	assert.Equal(t, path, svc.FileBackendPath())
	assert.Equal(t, 0, v.last().TotalRecords)

	err := c.ChangeDataSource(ctx, crud.KindDB)
	assert.True(t, errors.Is(err, crud.ErrUnknownBackend))
}
