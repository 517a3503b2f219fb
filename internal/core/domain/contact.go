package domain

// Contact is the shape consumed by the downstream CRM sink.
type Contact struct {
	// ParliamentID is the member's id in the Parliament members API.
	ParliamentID int

	DisplayName string
	FirstName   string
	LastName    string
	Party       string
	House       string
}
