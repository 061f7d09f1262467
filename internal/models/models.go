package models

import "strings"

// Player is one roster record. ID is zero for records that came from a
// backend without stable identifiers.
type Player struct {
	ID           int64    `json:"id,omitempty" db:"id"`
	FullName     string   `json:"fullName" db:"full_name"`
	BirthDate    Date     `json:"birthDate" db:"birth_date"`
	FootballTeam string   `json:"footballTeam" db:"football_team"`
	HomeCity     string   `json:"homeCity" db:"home_city"`
	TeamType     TeamType `json:"teamType" db:"team_type"`
	Position     Position `json:"position" db:"position"`
}

// Column limits shared by validation and the relational schema, counted in
// characters.
const (
	MaxFullNameLen = 150
	MaxTeamLen     = 100
	MaxCityLen     = 50
)

type TeamType string

const (
	TeamMain          TeamType = "MAIN"
	TeamReserve       TeamType = "RESERVE"
	TeamNotApplicable TeamType = "NOT_APPLICABLE"
)

// legacyTeamTypeNA is the short name older databases stored for
// TeamNotApplicable.
const legacyTeamTypeNA = "NA"

var teamTypeLabels = map[TeamType]string{
	TeamMain:          "основной",
	TeamReserve:       "запасной",
	TeamNotApplicable: "n/a",
}

// AllTeamTypes returns the members in declaration order.
func AllTeamTypes() []TeamType { return []TeamType{TeamMain, TeamReserve, TeamNotApplicable} }

func (t TeamType) Valid() bool {
	_, ok := teamTypeLabels[t]
	return ok
}

// Label is the display form, also used by the XML file format.
func (t TeamType) Label() string { return teamTypeLabels[t] }

func (t TeamType) String() string { return string(t) }

// ParseTeamType accepts a member name (any case), its label, or the legacy
// name NA.
func ParseTeamType(s string) (TeamType, bool) {
	s = strings.TrimSpace(s)
	if strings.EqualFold(s, legacyTeamTypeNA) {
		return TeamNotApplicable, true
	}
	for _, t := range AllTeamTypes() {
		if strings.EqualFold(s, string(t)) || strings.EqualFold(s, t.Label()) {
			return t, true
		}
	}
	return "", false
}

// TeamTypeFromLabel decodes a stored label. Empty means unset.
func TeamTypeFromLabel(label string) (TeamType, bool) {
	if label == "" {
		return "", true
	}
	for t, l := range teamTypeLabels {
		if l == label {
			return t, true
		}
	}
	return "", false
}

type Position string

const (
	Goalkeeper Position = "GOALKEEPER"
	Defender   Position = "DEFENDER"
	Midfielder Position = "MIDFIELDER"
	Forward    Position = "FORWARD"
)

var positionLabels = map[Position]string{
	Goalkeeper: "Вратарь",
	Defender:   "Защитник",
	Midfielder: "Полузащитник",
	Forward:    "Нападающий",
}

func AllPositions() []Position { return []Position{Goalkeeper, Defender, Midfielder, Forward} }

func (p Position) Valid() bool {
	_, ok := positionLabels[p]
	return ok
}

func (p Position) Label() string { return positionLabels[p] }

func (p Position) String() string { return string(p) }

// ParsePosition accepts a member name (any case) or its label.
func ParsePosition(s string) (Position, bool) {
	s = strings.TrimSpace(s)
	for _, p := range AllPositions() {
		if strings.EqualFold(s, string(p)) || strings.EqualFold(s, p.Label()) {
			return p, true
		}
	}
	return "", false
}

func PositionFromLabel(label string) (Position, bool) {
	if label == "" {
		return "", true
	}
	for p, l := range positionLabels {
		if l == label {
			return p, true
		}
	}
	return "", false
}
