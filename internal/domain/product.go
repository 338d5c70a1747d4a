package domain

import "strings"

// Field is a logical product attribute understood by the query builder
type Field string

// Canonical record fields, in the order the matching config declares them
const (
	FieldGTINs              Field = "gtins"
	FieldBrand              Field = "brand"
	FieldManufacturerNumber Field = "manufacturerNumber"
	FieldManufacturer       Field = "manufacturer"
)

// Fields lists every known field in canonical order
var Fields = []Field{
	FieldGTINs,
	FieldBrand,
	FieldManufacturerNumber,
	FieldManufacturer,
}

// IsKnown reports whether f is one of the canonical fields
func (f Field) IsKnown() bool {
	for _, known := range Fields {
		if f == known {
			return true
		}
	}
	return false
}

// Record represents an incoming product to be matched against the product search API.
// Any field may be empty; an empty field is treated the same as an absent one.
type Record struct {
	GTINs              string `json:"gtins,omitempty"`
	Brand              string `json:"brand,omitempty"`
	Manufacturer       string `json:"manufacturer,omitempty"`
	ManufacturerNumber string `json:"manufacturerNumber,omitempty"`
}

// Value returns the raw value of the given field, or "" for unknown fields
func (r Record) Value(f Field) string {
	switch f {
	case FieldGTINs:
		return r.GTINs
	case FieldBrand:
		return r.Brand
	case FieldManufacturer:
		return r.Manufacturer
	case FieldManufacturerNumber:
		return r.ManufacturerNumber
	}
	return ""
}

// IsEmpty reports whether the record carries no value at all
func (r Record) IsEmpty() bool {
	for _, f := range Fields {
		if r.Value(f) != "" {
			return false
		}
	}
	return true
}

// ParseField resolves a field name case-insensitively.
// Config loaders lowercase map keys, so "manufacturernumber" resolves to FieldManufacturerNumber.
func ParseField(name string) (Field, bool) {
	for _, f := range Fields {
		if strings.EqualFold(string(f), name) {
			return f, true
		}
	}
	return Field(name), false
}
