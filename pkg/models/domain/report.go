package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// LineItem is one computed billing row.
type LineItem struct {
	Sequence  int // 1-based
	Name      string
	Rate      decimal.Decimal
	Hours     decimal.Decimal
	LineTotal decimal.Decimal // Hours * Rate, unrounded
}

// ReportModel is everything a single report generation needs, built fresh per request.
type ReportModel struct {
	Config      ReportConfig
	Company     CompanyProfile
	Actor       ActorIdentity
	Period      Period
	ReportDate  time.Time
	LineItems   []LineItem
	TotalAmount decimal.Decimal // sum of LineTotal, unrounded
}

// GeneratedArtifactRecord tracks a generated report. It is written once and never updated.
type GeneratedArtifactRecord struct {
	ID          string
	ActorID     string
	CompanyID   string
	CompanyName string // populated on reads only
	Period      Period
	ReportDate  time.Time
	StoragePath *string
	Persisted   bool
	CreatedAt   time.Time
}
