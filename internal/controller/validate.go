package controller

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"roster/internal/models"
)

// PlayerInput is raw form input. BirthDate is YYYY-MM-DD.
type PlayerInput struct {
	FullName     string
	BirthDate    string
	FootballTeam string
	HomeCity     string
	TeamType     string
	Position     string
}

const (
	msgNameRequired  = "full name is required"
	msgBirthRequired = "birth date is required"
	msgBirthInvalid  = "birth date must be a valid YYYY-MM-DD date"
	msgBirthFuture   = "birth date cannot be in the future"
	msgTeamRequired  = "football team is required"
	msgCityRequired  = "home city is required"
	msgTeamTypeBad   = "invalid team type"
	msgPositionBad   = "invalid player position"
)

var (
	msgNameTooLong = fmt.Sprintf("full name must be at most %d characters", models.MaxFullNameLen)
	msgTeamTooLong = fmt.Sprintf("football team must be at most %d characters", models.MaxTeamLen)
	msgCityTooLong = fmt.Sprintf("home city must be at most %d characters", models.MaxCityLen)
)

// Validate returns every violation in in; nil means valid.
func (c *Controller) Validate(in PlayerInput) []string {
	_, errs := c.parse(in)
	return errs
}

func (c *Controller) parse(in PlayerInput) (models.Player, []string) {
	var errs []string
	p := models.Player{
		FullName:     strings.TrimSpace(in.FullName),
		FootballTeam: strings.TrimSpace(in.FootballTeam),
		HomeCity:     strings.TrimSpace(in.HomeCity),
	}
	if p.FullName == "" {
		errs = append(errs, msgNameRequired)
	} else if utf8.RuneCountInString(p.FullName) > models.MaxFullNameLen {
		errs = append(errs, msgNameTooLong)
	}
	if b := strings.TrimSpace(in.BirthDate); b == "" {
		errs = append(errs, msgBirthRequired)
	} else if d, err := models.ParseDate(b); err != nil {
		errs = append(errs, msgBirthInvalid)
	} else if d.After(c.today()) {
		errs = append(errs, msgBirthFuture)
	} else {
		p.BirthDate = d
	}
	if p.FootballTeam == "" {
		errs = append(errs, msgTeamRequired)
	} else if utf8.RuneCountInString(p.FootballTeam) > models.MaxTeamLen {
		errs = append(errs, msgTeamTooLong)
	}
	if p.HomeCity == "" {
		errs = append(errs, msgCityRequired)
	} else if utf8.RuneCountInString(p.HomeCity) > models.MaxCityLen {
		errs = append(errs, msgCityTooLong)
	}
	if tt, ok := models.ParseTeamType(in.TeamType); ok {
		p.TeamType = tt
	} else {
		errs = append(errs, msgTeamTypeBad)
	}
	if pos, ok := models.ParsePosition(in.Position); ok {
		p.Position = pos
	} else {
		errs = append(errs, msgPositionBad)
	}
	return p, errs
}
