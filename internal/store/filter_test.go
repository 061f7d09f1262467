package store

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"roster/internal/models"
)

var (
	ana = models.Player{FullName: "Ana Petrova", BirthDate: models.NewDate(1999, time.March, 3),
		FootballTeam: "Zenit", HomeCity: "Kazan", TeamType: models.TeamMain, Position: models.Forward}
	oleg = models.Player{FullName: "Oleg Ivanov", BirthDate: models.NewDate(2001, time.July, 9),
		FootballTeam: "Spartak", HomeCity: "Moscow", TeamType: models.TeamReserve, Position: models.Goalkeeper}
	pavel = models.Player{FullName: "Pavel Sidorov", BirthDate: models.NewDate(1995, time.January, 1),
		FootballTeam: "Rubin", HomeCity: "Samara", TeamType: models.TeamNotApplicable, Position: models.Defender}
)

func matching(f Filter, ps ...models.Player) []string {
	var out []string
	for _, p := range ps {
		if f.Matches(p) {
			out = append(out, p.FullName)
		}
	}
	return out
}

func TestEmptyFilterMatchesAll(t *testing.T) {
	f := NameOrBirth("", nil)
	assert.True(t, f.IsEmpty())
	assert.Len(t, matching(f, ana, oleg, pavel), 3)
}

func TestNameOrBirthIsUnion(t *testing.T) {
	d := oleg.BirthDate
	assert.Equal(t, []string{"Ana Petrova"}, matching(NameOrBirth("ANA", nil), ana, oleg, pavel))
	assert.Equal(t, []string{"Oleg Ivanov"}, matching(NameOrBirth("", &d), ana, oleg, pavel))
	assert.Equal(t, []string{"Ana Petrova", "Oleg Ivanov"}, matching(NameOrBirth("ana", &d), ana, oleg, pavel))
}

func TestPositionOrTeamType(t *testing.T) {
	pos := models.Defender
	tt := models.TeamMain
	assert.Equal(t, []string{"Pavel Sidorov"}, matching(PositionOrTeamType(&pos, nil), ana, oleg, pavel))
	assert.Equal(t, []string{"Ana Petrova", "Pavel Sidorov"}, matching(PositionOrTeamType(&pos, &tt), ana, oleg, pavel))
}

func TestTeamOrCitySubstring(t *testing.T) {
	assert.Equal(t, []string{"Oleg Ivanov"}, matching(TeamOrCity("spar", ""), ana, oleg, pavel))
	assert.Equal(t, []string{"Oleg Ivanov", "Pavel Sidorov"}, matching(TeamOrCity("spar", "SAM"), ana, oleg, pavel))
}

func TestCriteriaAreConjunctive(t *testing.T) {
	f := Of(
		AnyOf(Term{Field: FieldFullName, Op: Contains, Value: "o"}),
		AnyOf(Term{Field: FieldHomeCity, Op: EqualFold, Value: "moscow"}),
	)
	assert.Equal(t, []string{"Oleg Ivanov"}, matching(f, ana, oleg, pavel))
}

func TestValidateRejectsNonMembers(t *testing.T) {
	f := Of(AnyOf(Term{Field: FieldTeamType, Op: Equals, Value: "BENCH"}))
	assert.True(t, errors.Is(f.Validate(), ErrInvalidFilter))

	f = Of(AnyOf(Term{Field: "shirt", Op: Equals, Value: "10"}))
	assert.True(t, errors.Is(f.Validate(), ErrInvalidFilter))

	pos := models.Forward
	assert.NoError(t, PositionOrTeamType(&pos, nil).Validate())
}
