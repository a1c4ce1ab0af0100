package domain

// StoreInfo is the denormalized identity of a storage facility as seen
// by the analysis. Distance is miles from the subject store.
type StoreInfo struct {
	StoreID  string
	Name     string
	Address  string
	City     string
	State    string
	Zip      string
	Distance float64

	// Metadata resolved from the facility catalog or entered manually.
	YearBuilt     *int
	SquareFootage *float64
}

// FacilityRecord is one row of the CRM facility dataset used for fuzzy
// matching. Name follows the "Brand - Street Address" convention;
// ShippingStreet is the parsed street when the CRM carried one.
type FacilityRecord struct {
	Name           string
	ShippingStreet string
	SquareFootage  *float64
	YearBuilt      *int
}
