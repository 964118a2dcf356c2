package domain

import "strings"

// GeoQuery scopes discovery. Empty fields do not filter; an all-empty query
// matches nothing.
type GeoQuery struct {
	City      string `json:"city,omitempty"`
	County    string `json:"county,omitempty"`
	StateName string `json:"state_name,omitempty"`
}

// Normalized trims every field.
func (g GeoQuery) Normalized() GeoQuery {
	return GeoQuery{
		City:      strings.TrimSpace(g.City),
		County:    strings.TrimSpace(g.County),
		StateName: strings.TrimSpace(g.StateName),
	}
}

// IsEmpty reports whether no field is populated after trimming.
func (g GeoQuery) IsEmpty() bool {
	n := g.Normalized()
	return n.City == "" && n.County == "" && n.StateName == ""
}

// JurisdictionLevel is the tier of government owning a body.
type JurisdictionLevel string

const (
	LevelCity   JurisdictionLevel = "city"
	LevelCounty JurisdictionLevel = "county"
	LevelState  JurisdictionLevel = "state"
)

// Jurisdiction is a governed area.
type Jurisdiction struct {
	ID        string            `db:"id"         json:"id"`
	Level     JurisdictionLevel `db:"level"      json:"level"`
	Name      string            `db:"name"       json:"name"`
	StateName string            `db:"state_name" json:"state_name,omitempty"`
}
