package domain

import "strings"

// FeatureCode classifies a unit by access type and climate control.
type FeatureCode string

const (
	FeatureDUCC FeatureCode = "DUCC" // drive-up, climate controlled
	FeatureDU   FeatureCode = "DU"   // drive-up, non-climate
	FeatureECC  FeatureCode = "ECC"  // elevator, climate controlled
	FeatureENCC FeatureCode = "ENCC" // elevator, non-climate
	FeatureGLCC FeatureCode = "GLCC" // ground level, climate controlled
	FeatureGNCC FeatureCode = "GNCC" // ground level, non-climate

	// FeatureNA marks flag combinations that cannot be classified
	// without human review. Conflicts are never guessed away.
	FeatureNA FeatureCode = "N/A"
)

// ClassifyFeatures maps the four access/climate flags to a feature
// code. The mapping is total: every flag combination yields exactly
// one of the six codes or FeatureNA.
//
// Conflicts resolved to FeatureNA:
//   - drive-up and elevator both set (mutually exclusive access types)
//   - elevator with outdoor access (elevator implies interior)
//   - outdoor access without drive-up (ambiguous access type)
func ClassifyFeatures(climate, driveUp, elevator, outdoor bool) FeatureCode {
	switch {
	case driveUp && elevator:
		return FeatureNA
	case driveUp:
		if climate {
			return FeatureDUCC
		}
		return FeatureDU
	case elevator && outdoor:
		return FeatureNA
	case elevator:
		if climate {
			return FeatureECC
		}
		return FeatureENCC
	case outdoor:
		return FeatureNA
	default:
		if climate {
			return FeatureGLCC
		}
		return FeatureGNCC
	}
}

// FeatureCodeOf classifies a record.
func (r *RateRecord) FeatureCodeOf() FeatureCode {
	return ClassifyFeatures(r.ClimateControlled, r.DriveUp, r.Elevator, r.OutdoorAccess)
}

// GenericUnitType is the placeholder unit type that does not add
// information to a feature description.
const GenericUnitType = "Unit"

// FeatureDescription builds the human-readable classification string
// used for grouping and display: access label, climate label, and the
// unit type in brackets when it differs from the generic placeholder.
func (r *RateRecord) FeatureDescription() string {
	var access string
	switch {
	case r.DriveUp:
		access = "Drive-Up"
	case r.Elevator:
		access = "Elevator"
	case r.OutdoorAccess:
		access = "Exterior-Outdoor"
	default:
		access = "Ground Level"
	}

	var climate string
	switch {
	case r.ClimateControlled:
		climate = "Climate Controlled"
	case r.HumidityControlled:
		climate = "Humidity Controlled"
	default:
		climate = "Non-Climate"
	}

	desc := access + " / " + climate
	if r.UnitType != "" && !strings.EqualFold(r.UnitType, GenericUnitType) {
		desc += " [" + r.UnitType + "]"
	}
	return desc
}
