package extract

import "encoding/json"

// Fields is the best-effort view of one submission after every extraction
// strategy has run. Zero values mean the field was not found.
type Fields struct {
	Email          string
	LegalName      string
	ContactName    string
	Tier           string
	Brokerage      string
	Website        string
	Phone          string
	PrimaryColor   string
	SecondaryColor string
	Font           string
	Disclaimer     string
	LogoURLs       []string
	HeadshotURLs   []string
	ServiceArea    string
	CRMURL         string
	CalendarURL    string
	IntakeComplete bool
}

// Parse decodes a raw webhook body. A body that is not a JSON object yields
// a nil payload, which every strategy treats as not-found.
func Parse(body []byte) Payload {
	var p Payload
	if err := json.Unmarshal(body, &p); err != nil {
		return nil
	}
	return p
}

// Extract runs the full strategy cascade for every logical field.
func Extract(p Payload) Fields {
	f := Fields{
		Email: stringField(p,
			DirectKey("email", "email_address", "contact_email", "e-mail"),
			LabelMatch("email"),
			DeepEmailScan(),
		),
		LegalName: stringField(p,
			DirectKey("legal_business_name", "business_name", "legal_name", "company_name", "company"),
			LabelMatch("legal business name", "business name", "company"),
		),
		ContactName: stringField(p,
			DirectKey("contact_name", "full_name", "name"),
			LabelMatch("full name", "contact name", "your name"),
		),
		Tier: stringField(p,
			DirectKey("tier", "subscription_tier", "package", "plan", "subscription"),
			LabelMatch("tier", "package", "plan", "subscription"),
		),
		Brokerage: stringField(p,
			DirectKey("brokerage", "broker"),
			LabelMatch("brokerage"),
		),
		Website: stringField(p,
			DirectKey("website", "website_url", "site"),
			LabelMatch("website"),
		),
		Phone: stringField(p,
			DirectKey("phone", "phone_number", "mobile"),
			LabelMatch("phone"),
		),
		PrimaryColor: stringField(p,
			DirectKey("primary_color", "primary_colour", "brand_color"),
			LabelMatch("primary color", "brand color"),
		),
		SecondaryColor: stringField(p,
			DirectKey("secondary_color", "secondary_colour", "accent_color"),
			LabelMatch("secondary color", "accent color"),
		),
		Font: stringField(p,
			DirectKey("font", "brand_font", "font_family"),
			LabelMatch("font"),
		),
		Disclaimer: stringField(p,
			DirectKey("disclaimer", "disclaimer_text", "legal_disclaimer"),
			LabelMatch("disclaimer"),
		),
		LogoURLs: urlField(p,
			DirectKey("logo_urls", "logo_files", "logos", "logo_url", "logo"),
			LabelMatch("logo"),
		),
		HeadshotURLs: urlField(p,
			DirectKey("headshot_urls", "headshots", "headshot", "photos", "photo"),
			LabelMatch("headshot", "photo"),
		),
		ServiceArea: stringField(p,
			DirectKey("service_area", "service_areas", "market"),
			LabelMatch("service area", "market"),
		),
		CRMURL: stringField(p,
			DirectKey("crm_url", "crm"),
			LabelMatch("crm"),
		),
		CalendarURL: stringField(p,
			DirectKey("calendar_url", "calendar", "booking_link"),
			LabelMatch("calendar", "booking"),
		),
	}

	if v, ok := First(p,
		DirectKey("intake_complete", "onboarding_complete"),
		LabelMatch("intake complete", "onboarding complete"),
	); ok {
		f.IntakeComplete = asBool(v)
	}

	return f
}

// stringField runs strategies until one yields a usable string. A strategy
// hit that coerces to "" (an unexpected value type) counts as not-found so
// later strategies still get a chance.
func stringField(p Payload, strategies ...Strategy) string {
	for _, s := range strategies {
		if v, ok := s(p); ok {
			if str := asString(v); str != "" {
				return str
			}
		}
	}
	return ""
}

func urlField(p Payload, strategies ...Strategy) []string {
	for _, s := range strategies {
		if v, ok := s(p); ok {
			if urls := URLList(v); len(urls) > 0 {
				return urls
			}
		}
	}
	return nil
}
