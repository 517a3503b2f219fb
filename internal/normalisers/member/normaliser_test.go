package member

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/westminster-data/parlsync/internal/core/domain"
)

func rawMember(house float64, listAs string) domain.RawRecord {
	return domain.RawRecord{
		"id":            float64(172),
		"nameListAs":    listAs,
		"nameDisplayAs": "Test Member",
		"latestParty": map[string]any{
			"id":   float64(15),
			"name": "Labour",
		},
		"latestHouseMembership": map[string]any{
			"house":              house,
			"membershipEndDate":  nil,
			"membershipFrom":     "Hackney North and Stoke Newington",
			"membershipStartDate": "1987-06-11T00:00:00",
		},
	}
}

func TestNormalise_CommonsMember(t *testing.T) {
	n := New()

	rec, err := n.Normalise(rawMember(1, "Abbott, Ms Diane"))

	require.NoError(t, err)
	assert.Equal(t, "172", rec["id"])
	assert.Equal(t, "Commons", rec["latestHouseMembershiphouse"])
	assert.Equal(t, "Abbott", rec["surname"])
	assert.Equal(t, "Diane", rec["firstname"])
	assert.Equal(t, "Labour", rec["latestPartyname"])
	// Fixed schema: every column present even when the remote omitted it.
	for _, col := range n.Schema() {
		_, ok := rec[col]
		assert.True(t, ok, "missing column %s", col)
	}
}

func TestNormalise_HouseCodeMapping(t *testing.T) {
	assert.Equal(t, "Commons", HouseName("1"))
	assert.Equal(t, "Lords", HouseName("2"))
	assert.Equal(t, "Lords", HouseName(""))
}

func TestNormalise_LordsHaveNoFirstName(t *testing.T) {
	n := New()

	rec, err := n.Normalise(rawMember(2, "Adonis, Lord"))

	require.NoError(t, err)
	assert.Equal(t, "Lords", rec["latestHouseMembershiphouse"])
	assert.Equal(t, "Adonis", rec["surname"])
	assert.Empty(t, rec["firstname"])
}

func TestNormalise_StripsHonorificsAndMiddleNames(t *testing.T) {
	n := New()

	for listAs, want := range map[string]string{
		"Smith, Sir John":        "John",
		"Jones, Dr Sarah Anne":   "Sarah",
		"Brown, Dame Margaret":   "Margaret",
		"Green, Mrs Helen":       "Helen",
		"White, Thomas":          "Thomas",
	} {
		rec, err := n.Normalise(rawMember(1, listAs))
		require.NoError(t, err)
		assert.Equal(t, want, rec["firstname"], listAs)
	}
}

func TestNormalise_MissingRequiredFields(t *testing.T) {
	n := New()

	_, err := n.Normalise(domain.RawRecord{"nameListAs": "Smith, John"})
	assert.ErrorIs(t, err, domain.ErrSchema)

	_, err = n.Normalise(domain.RawRecord{"id": float64(1)})
	assert.ErrorIs(t, err, domain.ErrSchema)
}

func TestIsActive(t *testing.T) {
	active := rawMember(1, "Abbott, Ms Diane")
	assert.True(t, IsActive(active))

	former := rawMember(1, "Blair, Tony")
	former["latestHouseMembership"].(map[string]any)["membershipEndDate"] = "2007-06-27T00:00:00"
	assert.False(t, IsActive(former))

	assert.False(t, IsActive(domain.RawRecord{"id": float64(1)}))
}
