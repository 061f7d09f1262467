package store

import (
	"fmt"
	"strings"

	"roster/internal/models"
)

// Field names a player attribute. The values double as column names.
type Field string

const (
	FieldFullName     Field = "full_name"
	FieldBirthDate    Field = "birth_date"
	FieldFootballTeam Field = "football_team"
	FieldHomeCity     Field = "home_city"
	FieldTeamType     Field = "team_type"
	FieldPosition     Field = "position"
)

type Op int

const (
	// Contains is a case-insensitive substring match.
	Contains Op = iota
	// Equals is exact equality.
	Equals
	// EqualFold is case-insensitive equality.
	EqualFold
)

// Term is a single field comparison.
type Term struct {
	Field Field
	Op    Op
	Value string
}

// Criterion holds when any of its terms holds.
type Criterion []Term

// Filter holds when every criterion holds. The zero Filter matches all
// players.
type Filter []Criterion

// AnyOf builds a criterion, dropping terms with an empty value.
func AnyOf(terms ...Term) Criterion {
	out := make(Criterion, 0, len(terms))
	for _, t := range terms {
		if t.Value != "" {
			out = append(out, t)
		}
	}
	return out
}

// Of wraps non-empty criteria into a Filter.
func Of(criteria ...Criterion) Filter {
	var f Filter
	for _, c := range criteria {
		if len(c) > 0 {
			f = append(f, c)
		}
	}
	return f
}

func (f Filter) IsEmpty() bool { return len(f) == 0 }

// NameOrBirth matches a name substring or an exact birth date.
func NameOrBirth(namePart string, birth *models.Date) Filter {
	var date string
	if birth != nil && !birth.IsZero() {
		date = birth.String()
	}
	return Of(AnyOf(
		Term{Field: FieldFullName, Op: Contains, Value: namePart},
		Term{Field: FieldBirthDate, Op: Equals, Value: date},
	))
}

// PositionOrTeamType matches either classification exactly.
func PositionOrTeamType(pos *models.Position, teamType *models.TeamType) Filter {
	var p, tt string
	if pos != nil {
		p = string(*pos)
	}
	if teamType != nil {
		tt = string(*teamType)
	}
	return Of(AnyOf(
		Term{Field: FieldPosition, Op: Equals, Value: p},
		Term{Field: FieldTeamType, Op: Equals, Value: tt},
	))
}

// TeamOrCity matches a team substring or a city substring.
func TeamOrCity(team, city string) Filter {
	return Of(AnyOf(
		Term{Field: FieldFootballTeam, Op: Contains, Value: team},
		Term{Field: FieldHomeCity, Op: Contains, Value: city},
	))
}

// Validate rejects unknown fields and enum terms that are not members.
func (f Filter) Validate() error {
	for _, c := range f {
		for _, t := range c {
			switch t.Field {
			case FieldFullName, FieldFootballTeam, FieldHomeCity:
			case FieldBirthDate:
				if _, err := models.ParseDate(t.Value); err != nil {
					return fmt.Errorf("%w: %v", ErrInvalidFilter, err)
				}
			case FieldTeamType:
				if !models.TeamType(t.Value).Valid() {
					return fmt.Errorf("%w: team type %q", ErrInvalidFilter, t.Value)
				}
			case FieldPosition:
				if !models.Position(t.Value).Valid() {
					return fmt.Errorf("%w: position %q", ErrInvalidFilter, t.Value)
				}
			default:
				return fmt.Errorf("%w: unknown field %q", ErrInvalidFilter, t.Field)
			}
		}
	}
	return nil
}

// Matches evaluates f against p in process.
func (f Filter) Matches(p models.Player) bool {
	for _, c := range f {
		if !c.matches(p) {
			return false
		}
	}
	return true
}

func (c Criterion) matches(p models.Player) bool {
	for _, t := range c {
		if t.matches(p) {
			return true
		}
	}
	return false
}

func (t Term) matches(p models.Player) bool {
	got := fieldValue(p, t.Field)
	switch t.Op {
	case Contains:
		return strings.Contains(strings.ToLower(got), strings.ToLower(t.Value))
	case Equals:
		return got == t.Value
	default:
		return strings.EqualFold(got, t.Value)
	}
}

func fieldValue(p models.Player, f Field) string {
	switch f {
	case FieldFullName:
		return p.FullName
	case FieldBirthDate:
		return p.BirthDate.String()
	case FieldFootballTeam:
		return p.FootballTeam
	case FieldHomeCity:
		return p.HomeCity
	case FieldTeamType:
		return string(p.TeamType)
	case FieldPosition:
		return string(p.Position)
	}
	return ""
}
