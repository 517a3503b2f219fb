// Package member normalises legislator payloads from the members API into
// the flat member archive schema.
package member

import (
	"fmt"
	"strings"

	"github.com/westminster-data/parlsync/internal/core/domain"
	"github.com/westminster-data/parlsync/internal/core/ports/driven"
	"github.com/westminster-data/parlsync/internal/normalisers/flatten"
)

// Ensure Normaliser implements the port.
var _ driven.RecordNormaliser = (*Normaliser)(nil)

// schema is the fixed column set of the member archives. Column names keep
// the flattened remote spelling so existing archives stay readable.
var schema = domain.Schema{
	"id",
	"nameListAs",
	"nameDisplayAs",
	"nameFullTitle",
	"gender",
	"surname",
	"firstname",
	"latestPartyid",
	"latestPartyname",
	"latestPartyabbreviation",
	"latestHouseMembershiphouse",
	"latestHouseMembershipmembershipFrom",
	"latestHouseMembershipmembershipStartDate",
	"latestHouseMembershipmembershipEndDate",
}

// honorifics are stripped from the front of first names.
var honorifics = []string{"Mr ", "Mrs ", "Ms ", "Sir ", "Dr ", "Miss ", "Dame "}

// Normaliser flattens member payloads and derives the name and house
// columns.
type Normaliser struct{}

// New creates a member normaliser.
func New() *Normaliser {
	return &Normaliser{}
}

// Schema returns the member archive column set.
func (n *Normaliser) Schema() domain.Schema {
	return schema
}

// Normalise maps one raw member payload to a flat record. Nested keys are
// joined with no separator, matching the archive's historical column names.
func (n *Normaliser) Normalise(raw domain.RawRecord) (domain.Record, error) {
	flat := flatten.Map(raw, "")

	if flat["id"] == "" {
		return nil, fmt.Errorf("%w: member record missing id", domain.ErrSchema)
	}
	listAs := flat["nameListAs"]
	if listAs == "" {
		return nil, fmt.Errorf("%w: member %s missing nameListAs", domain.ErrSchema, flat["id"])
	}

	flat["latestHouseMembershiphouse"] = HouseName(flat["latestHouseMembershiphouse"])

	surname, firstname := splitListAs(listAs)
	// The Lords archive tracks no first names.
	if flat["latestHouseMembershiphouse"] == "Lords" {
		firstname = ""
	} else {
		firstname = cleanFirstName(firstname)
	}
	flat["surname"] = surname
	flat["firstname"] = firstname

	return domain.Project(flat, schema), nil
}

// HouseName maps the remote house-identifier code to its display name:
// 1 is the Commons, anything else the Lords.
func HouseName(code string) string {
	if code == "1" {
		return "Commons"
	}
	return "Lords"
}

// IsActive reports whether the raw payload describes a sitting member:
// the latest house membership has no end date.
func IsActive(raw domain.RawRecord) bool {
	membership, ok := raw["latestHouseMembership"].(map[string]any)
	if !ok {
		return false
	}
	return membership["membershipEndDate"] == nil
}

// splitListAs derives surname and firstname from a "Surname, Firstname"
// shaped display field.
func splitListAs(listAs string) (surname, firstname string) {
	parts := strings.SplitN(listAs, ", ", 2)
	surname = parts[0]
	if len(parts) == 2 {
		firstname = parts[1]
	}
	return surname, firstname
}

// cleanFirstName strips honorific prefixes, then truncates to the first
// space-delimited token.
func cleanFirstName(name string) string {
	for _, prefix := range honorifics {
		name = strings.ReplaceAll(name, prefix, "")
	}
	if i := strings.IndexByte(name, ' '); i >= 0 {
		name = name[:i]
	}
	return name
}
