package models

import "time"

// Client is the primary persisted record for one intake submission.
// Created exactly once per successful submission, never updated afterwards.
type Client struct {
	ID                int64  `json:"id,omitempty"`
	Email             string `json:"email"`
	LegalBusinessName string `json:"legal_business_name"`
	ContactName       string `json:"contact_name,omitempty"`
	Tier              string `json:"tier"`
	Brokerage         string `json:"brokerage,omitempty"`
	Website           string `json:"website,omitempty"`
	Phone             string `json:"phone,omitempty"`
	CreatedAt         string `json:"created_at,omitempty"`
}

// BrandKit holds the visual-identity attributes and mirrored asset URLs
// owned by one client. At most one row per submission.
type BrandKit struct {
	ID             int64    `json:"id,omitempty"`
	ClientID       int64    `json:"client_id"`
	PrimaryColor   string   `json:"primary_color,omitempty"`
	SecondaryColor string   `json:"secondary_color,omitempty"`
	Font           string   `json:"font,omitempty"`
	Disclaimer     string   `json:"disclaimer,omitempty"`
	LogoURLs       []string `json:"logo_urls,omitempty"`
	HeadshotURLs   []string `json:"headshot_urls,omitempty"`
}

// IsEmpty reports whether the kit carries nothing beyond its foreign key.
func (b *BrandKit) IsEmpty() bool {
	return b.PrimaryColor == "" && b.SecondaryColor == "" && b.Font == "" &&
		b.Disclaimer == "" && len(b.LogoURLs) == 0 && len(b.HeadshotURLs) == 0
}

// Market holds operational service-area metadata owned by one client.
type Market struct {
	ID          int64  `json:"id,omitempty"`
	ClientID    int64  `json:"client_id"`
	ServiceArea string `json:"service_area,omitempty"`
}

// Systems holds integration URLs owned by one client.
type Systems struct {
	ID          int64  `json:"id,omitempty"`
	ClientID    int64  `json:"client_id"`
	CRMURL      string `json:"crm_url,omitempty"`
	CalendarURL string `json:"calendar_url,omitempty"`
}

// Status tracks intake completion for one client.
type Status struct {
	ID             int64 `json:"id,omitempty"`
	ClientID       int64 `json:"client_id"`
	IntakeComplete bool  `json:"intake_complete"`
}

// IntakeResponse is the JSON envelope returned to the webhook caller.
type IntakeResponse struct {
	OK       bool   `json:"ok"`
	ClientID int64  `json:"client_id,omitempty"`
	Error    string `json:"error,omitempty"`
	Hint     string `json:"hint,omitempty"`
}

// IntakeStats tracks process-lifetime submission counters for /readyz.
type IntakeStats struct {
	TotalSubmissions      int64     `json:"total_submissions"`
	SuccessfulSubmissions int64     `json:"successful_submissions"`
	FailedSubmissions     int64     `json:"failed_submissions"`
	AssetsMirrored        int64     `json:"assets_mirrored"`
	LastSubmission        time.Time `json:"last_submission"`
}
