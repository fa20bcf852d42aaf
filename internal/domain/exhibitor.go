package domain

// KeyPrefix namespaces every key this service writes to the store.
const KeyPrefix = "gitex:"

// Product is a single product entry on an exhibitor profile.
type Product struct {
	Name     string `json:"name"`
	Category string `json:"category"`
}

// Exhibitor is the store-of-record exhibitor profile. It is written only
// by the ingest loader and read-only to the assistant core.
type Exhibitor struct {
	ID          int64
	Name        string
	Description string
	StandNumber string
	Country     string
	LogoURL     string
	ProfileURL  string
	Products    []Product
	SocialLinks map[string]string
}

// Normalize replaces nil containers with empty ones. Result formatting
// relies on Products and SocialLinks never being nil.
func (e *Exhibitor) Normalize() {
	if e.Products == nil {
		e.Products = []Product{}
	}
	if e.SocialLinks == nil {
		e.SocialLinks = map[string]string{}
	}
}
