package domain

// Source tags the provenance of a rate record.
type Source string

const (
	SourceDatabase Source = "Database"
	SourceAPI      Source = "API"
)

// String returns the string representation of Source.
func (s Source) String() string {
	return string(s)
}

// IsValid checks if the source is a valid value.
func (s Source) IsValid() bool {
	return s == SourceDatabase || s == SourceAPI
}
