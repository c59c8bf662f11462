package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type Role string

const (
	RoleFreelancer Role = "freelancer"
	RoleAdmin      Role = "admin"
)

// ActorIdentity is the subject a report is generated for: the caller, or the user an admin
// acts on behalf of.
type ActorIdentity struct {
	ID          string
	DisplayName string
	Role        Role
}

func (a ActorIdentity) IsAdmin() bool {
	return a.Role == RoleAdmin
}

type CompanyProfile struct {
	ID      string
	ActorID string
	Name    string
	TaxID   string // optional
	City    string // optional
}

type ActivityRate struct {
	ID         string
	ActorID    string
	Name       string
	HourlyRate decimal.Decimal
}

// WorkRecord is the hours logged against one activity for one company in one month.
type WorkRecord struct {
	ID         string
	ActorID    string
	CompanyID  string
	ActivityID string
	Period     Period
	Hours      decimal.Decimal
	CreatedAt  time.Time
}

// BillableRecord is a work record joined with the rate of its activity.
type BillableRecord struct {
	Record   WorkRecord
	Activity ActivityRate
}

// ReportTemplate holds the unparsed template document and optional style overrides.
type ReportTemplate struct {
	ID         string
	Name       string
	Definition []byte
	Styles     []byte // optional
}

type ReportConfig struct {
	ID         string
	ActorID    string
	CompanyID  string
	TemplateID string
	Location   string // optional
	IntroText  string // optional
	OutroText  string // optional
	Template   ReportTemplate
}
