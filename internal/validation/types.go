package validation

// Profile carries the rules that differ between schema versions. Version 2
// pins the tenant id to 11 uppercase alphanumerics; version 1 accepted any
// alphanumeric id up to 20 characters.
type Profile struct {
	Version    string
	TINMin     int
	TINMax     int
	TINPattern string
}

// CurrentProfile is schema version 2
func CurrentProfile() Profile {
	return Profile{Version: VersionCurrent, TINMin: 11, TINMax: 11, TINPattern: `^[A-Z0-9]{11}$`}
}

// LegacyProfile is schema version 1
func LegacyProfile() Profile {
	return Profile{Version: VersionLegacy, TINMin: 1, TINMax: 20, TINPattern: `^[A-Z0-9]{1,20}$`}
}

// TIN is a taxpayer id with pattern
func (p Profile) TIN() Rule {
	return Str().Len(p.TINMin, p.TINMax).Match(p.TINPattern)
}

// TINLength is a taxpayer id checked on length only
func (p Profile) TINLength() Rule {
	return Str().Len(p.TINMin, p.TINMax)
}

// BranchID is a two character branch id
func BranchID() Rule { return Str().Len(2, 2) }

// YesNo is a Y/N flag
func YesNo() Rule { return Str().Match(`^[YN]$`) }

// DT14 is a yyyyMMddHHmmss timestamp
func DT14() Rule { return Str().Match(`^\d{14}$`) }

// DT8 is a yyyyMMdd date
func DT8() Rule { return Str().Match(`^\d{8}$`) }

// FlexDate accepts anything from yyyyMMdd to yyyyMMddHHmmss
func FlexDate() Rule { return Str().Len(8, 14) }

// Code5 is a short uppercase code
func Code5() Rule { return Str().Len(1, 5).Match(`^[A-Z0-9]{1,5}$`) }

// Code10 is a classification code
func Code10() Rule { return Str().Len(1, 10).Match(`^[A-Z0-9]{1,10}$`) }

// Amount18 is a non-negative amount with 18 digits, 2 decimals
func Amount18() Rule { return Amount(18, 2) }

// Amount13 is a non-negative quantity with 13 digits, 2 decimals
func Amount13() Rule { return Amount(13, 2) }

// TaxRate is a tax rate percentage
func TaxRate() Rule { return Rate(7, 2) }

// DiscountRate is a discount percentage
func DiscountRate() Rule { return Rate(5, 2) }

// InsuranceRate is a whole-number percentage
func InsuranceRate() Rule { return Int(0, 100) }

// InvoiceNo is a numeric string of up to 38 digits without leading zeros
func InvoiceNo() Rule { return Str().Match(`^\d{1,38}$`).NoLeading() }

// Text is a string bounded to [min, max] characters; 0 leaves a side open
func Text(min, max int) Rule { return Str().Len(min, max) }

// NonEmpty is a string of at least one character
func NonEmpty() Rule { return Str().Len(1, 0) }
