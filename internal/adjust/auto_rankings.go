package adjust

// Defaults used when a facility's build year or footprint is unknown.
const (
	DefaultAgeRanking  = 5
	DefaultSizeRanking = 7
)

// AgeRanking scores facility age in decade bands, 10 for buildings up
// to ten years old down to 1 past ninety. Years in the future score as
// new construction.
func AgeRanking(yearBuilt, currentYear int) int {
	age := currentYear - yearBuilt
	if age < 0 {
		return 10
	}
	if age > 90 {
		return 1
	}
	return 10 - (age-1)/10
}

// SizeRanking scores facility footprint in 10k square-foot bands from
// 10 (50k SF or under, most competitive) down to 4 (over 100k SF).
func SizeRanking(squareFootage float64) int {
	switch {
	case squareFootage <= 50000:
		return 10
	case squareFootage <= 60000:
		return 9
	case squareFootage <= 70000:
		return 8
	case squareFootage <= 80000:
		return 7
	case squareFootage <= 90000:
		return 6
	case squareFootage <= 100000:
		return 5
	default:
		return 4
	}
}
