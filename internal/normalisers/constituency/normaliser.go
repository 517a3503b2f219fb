// Package constituency normalises constituency payloads from the members
// API into the flat constituency archive schema.
package constituency

import (
	"fmt"

	"github.com/westminster-data/parlsync/internal/core/domain"
	"github.com/westminster-data/parlsync/internal/core/ports/driven"
	"github.com/westminster-data/parlsync/internal/normalisers/flatten"
)

// Ensure Normaliser implements the port.
var _ driven.RecordNormaliser = (*Normaliser)(nil)

// schema is the fixed column set of the constituency archives. Unlike the
// member archives, nested keys are joined with underscores.
var schema = domain.Schema{
	"id",
	"name",
	"startDate",
	"endDate",
	"currentRepresentation_member_value_id",
	"currentRepresentation_member_value_nameDisplayAs",
	"currentRepresentation_member_value_latestParty_name",
}

// Normaliser flattens constituency payloads.
type Normaliser struct{}

// New creates a constituency normaliser.
func New() *Normaliser {
	return &Normaliser{}
}

// Schema returns the constituency archive column set.
func (n *Normaliser) Schema() domain.Schema {
	return schema
}

// Normalise maps one raw constituency payload to a flat record, joining
// nested keys with an underscore.
func (n *Normaliser) Normalise(raw domain.RawRecord) (domain.Record, error) {
	flat := flatten.Map(raw, "_")

	if flat["id"] == "" {
		return nil, fmt.Errorf("%w: constituency record missing id", domain.ErrSchema)
	}
	if flat["name"] == "" {
		return nil, fmt.Errorf("%w: constituency %s missing name", domain.ErrSchema, flat["id"])
	}

	return domain.Project(flat, schema), nil
}

// IsActive reports whether the raw payload describes a current
// constituency: one with no end date.
func IsActive(raw domain.RawRecord) bool {
	return raw["endDate"] == nil
}
