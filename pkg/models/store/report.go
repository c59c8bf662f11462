package store

import "time"

type Profile struct {
	ID          string
	DisplayName string
	Role        string
	CreatedAt   time.Time
}

type Company struct {
	ID        string
	UserID    string
	Name      string
	TaxNumber *string
	City      *string
}

type Activity struct {
	ID         string
	UserID     string
	Name       string
	HourlyRate string // decimal text
}

type WorkEntry struct {
	ID         string
	UserID     string
	CompanyID  string
	ActivityID string
	Month      string // YYYY-MM-01
	Hours      string // decimal text
	CreatedAt  time.Time
}

// BillableEntry is a work entry joined with its activity.
type BillableEntry struct {
	WorkEntry
	ActivityName string
	HourlyRate   string
}

type ReportTemplate struct {
	ID         string
	Name       string
	Definition string
	Styles     *string
}

type ReportConfig struct {
	ID         string
	UserID     string
	CompanyID  string
	TemplateID string
	Location   *string
	IntroText  *string
	OutroText  *string
	Template   ReportTemplate
}

type GeneratedReport struct {
	ID          string
	UserID      string
	CompanyID   string
	CompanyName string
	Month       string // YYYY-MM-01
	ReportDate  string // YYYY-MM-DD
	StoragePath *string
	Persisted   bool
	CreatedAt   time.Time
}

// GeneratedReportFilter narrows ListGeneratedReports. Empty fields match everything.
type GeneratedReportFilter struct {
	UserID    string
	CompanyID string
}
