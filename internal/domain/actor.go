package domain

// Actor identifies the authenticated caller of a service operation.
// Built from verified JWT claims; services trust it as-is.
type Actor struct {
	ID    string
	Email string
	Name  string
}
