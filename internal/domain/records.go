package domain

import "time"

// SourceType is the kind of government record.
type SourceType string

const (
	SourceCouncilFile    SourceType = "council_file"
	SourceBill           SourceType = "bill"
	SourceAgenda         SourceType = "agenda"
	SourceMinutes        SourceType = "minutes"
	SourceVoteRoll       SourceType = "vote_roll"
	SourceExecutiveOrder SourceType = "executive_order"
	SourcePressRelease   SourceType = "press_release"
	SourceReport         SourceType = "report"
	SourceBudget         SourceType = "budget"
	SourceLawsuitDocket  SourceType = "lawsuit_docket"
	SourceElectionNotice SourceType = "election_notice"
)

// SourceRecord is a government action as stored upstream. Geography comes
// from the owning body's jurisdiction.
type SourceRecord struct {
	ID           string       `json:"id"`
	Title        string       `json:"title"`
	Summary      string       `json:"summary,omitempty"`
	URL          string       `json:"url,omitempty"`
	Type         SourceType   `json:"source_type"`
	Tags         []string     `json:"tags"`
	MeetingDate  *time.Time   `json:"date,omitempty"`
	CreatedAt    time.Time    `json:"created_at"`
	Jurisdiction Jurisdiction `json:"jurisdiction"`
}

// CitizenIssue is a citizen post with denormalised geography. Score is the
// vote tally and is owned by the posts service.
type CitizenIssue struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Body      string    `json:"body,omitempty"`
	Category  string    `json:"category"`
	City      string    `json:"city,omitempty"`
	County    string    `json:"county,omitempty"`
	StateName string    `json:"state_name,omitempty"`
	Score     int       `json:"score"`
	CreatedAt time.Time `json:"created_at"`
}
