package model

import (
	"slices"

	"github.com/google/uuid"
)

// Location is a WGS84 coordinate pair.
type Location struct {
	Latitude  float64
	Longitude float64
}

// ProfileAttributeValue is a single attribute's value as selected by the
// account, validated against the profile_attributes definition file loaded
// at startup (spec.md §6 "profile_attributes").
type ProfileAttributeValue struct {
	AttributeID int32
	Values      []int32 // indices into the attribute's value list; multiple for multi-select
}

// ProfileAttributeFilter is a search-side filter over a single attribute.
type ProfileAttributeFilter struct {
	AttributeID int32
	Accept      []int32
	// Unknown accepts profiles that never set this attribute at all.
	Unknown bool
}

// SearchFilters narrows profile discovery beyond the spatial predicate.
type SearchFilters struct {
	MinAge     *int32
	MaxAge     *int32
	Attributes []ProfileAttributeFilter
}

// Profile is the mutable content record for an account.
type Profile struct {
	AccountID  AccountIdInternal
	Name       string
	Text       string
	Age        int32
	Attributes []ProfileAttributeValue
	Filters    SearchFilters
	Location   Location
	// Version changes on every content update; clients send the last known
	// version and receive no payload back when nothing changed.
	Version uuid.UUID
}

// Equal reports whether two profiles carry the same externally-visible
// content, ignoring Version. Used to decide whether an update actually
// bumps the version (spec.md §8 "Applying an unchanged ProfileUpdate does
// not bump profile version").
func (p Profile) Equal(other Profile) bool {
	if p.Name != other.Name || p.Text != other.Text || p.Age != other.Age {
		return false
	}
	if p.Location != other.Location {
		return false
	}
	if len(p.Attributes) != len(other.Attributes) {
		return false
	}
	for i := range p.Attributes {
		a, b := p.Attributes[i], other.Attributes[i]
		if a.AttributeID != b.AttributeID || len(a.Values) != len(b.Values) {
			return false
		}
		for j := range a.Values {
			if a.Values[j] != b.Values[j] {
				return false
			}
		}
	}
	sameBound := func(a, b *int32) bool { return (a == nil) == (b == nil) && (a == nil || *a == *b) }
	if !sameBound(p.Filters.MinAge, other.Filters.MinAge) || !sameBound(p.Filters.MaxAge, other.Filters.MaxAge) ||
		len(p.Filters.Attributes) != len(other.Filters.Attributes) {
		return false
	}
	for i := range p.Filters.Attributes {
		a, b := p.Filters.Attributes[i], other.Filters.Attributes[i]
		if a.AttributeID != b.AttributeID || a.Unknown != b.Unknown || !slices.Equal(a.Accept, b.Accept) {
			return false
		}
	}
	return true
}
