package api

import "time"

type GenerateReportRequest struct {
	CompanyID  string `json:"company_id"`
	Period     string `json:"period"`                // YYYY-MM or YYYY-MM-01
	ReportDate string `json:"report_date,omitempty"` // YYYY-MM-DD, today when empty
	OnBehalfOf string `json:"on_behalf_of,omitempty"`
	Persist    bool   `json:"persist"`
}

type GeneratedReport struct {
	ID          string    `json:"id"`
	CompanyID   string    `json:"company_id"`
	CompanyName string    `json:"company_name"`
	Period      string    `json:"period"`
	ReportDate  string    `json:"report_date"`
	StoragePath *string   `json:"storage_path,omitempty"`
	Persisted   bool      `json:"persisted"`
	CreatedAt   time.Time `json:"created_at"`
}

type SignedURL struct {
	URL       string    `json:"url"`
	ExpiresAt time.Time `json:"expires_at"`
}

type Error struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
}
