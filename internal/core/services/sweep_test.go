package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/westminster-data/parlsync/internal/adapters/driven/storage/memory"
	"github.com/westminster-data/parlsync/internal/core/domain"
)

// stubDirectory implements the member and constituency sources over fixed
// id maps. Unknown ids return domain.ErrNotFound, like the remote's 404.
type stubDirectory struct {
	members        map[int]domain.RawRecord
	memberErrs     map[int]error
	constituencies map[int]domain.RawRecord
}

func (s *stubDirectory) MemberByID(_ context.Context, id int) (domain.RawRecord, error) {
	if err := s.memberErrs[id]; err != nil {
		return nil, err
	}
	raw, ok := s.members[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return raw, nil
}

func (s *stubDirectory) ConstituencyByID(_ context.Context, id int) (domain.RawRecord, error) {
	raw, ok := s.constituencies[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return raw, nil
}

// rawMember builds a member payload in the remote's nested shape. House 1
// is the Commons; a nil end date marks a sitting member.
func rawMember(id int, listAs string, house float64, endDate any) domain.RawRecord {
	return domain.RawRecord{
		"id":            float64(id),
		"nameListAs":    listAs,
		"nameDisplayAs": listAs,
		"nameFullTitle": listAs,
		"gender":        "M",
		"latestParty": map[string]any{
			"id":           float64(4),
			"name":         "Labour",
			"abbreviation": "Lab",
		},
		"latestHouseMembership": map[string]any{
			"house":               house,
			"membershipFrom":      "Leeds Central",
			"membershipStartDate": "2010-05-06T00:00:00",
			"membershipEndDate":   endDate,
		},
	}
}

func rawConstituency(id int, name string, endDate any) domain.RawRecord {
	return domain.RawRecord{
		"id":        float64(id),
		"name":      name,
		"startDate": "2010-05-06T00:00:00",
		"endDate":   endDate,
		"currentRepresentation": map[string]any{
			"member": map[string]any{
				"value": map[string]any{
					"id":            float64(172),
					"nameDisplayAs": "Hilary Benn",
					"latestParty":   map[string]any{"name": "Labour"},
				},
			},
		},
	}
}

func newTestSweeper(store *memory.ArchiveStore, dir *stubDirectory, maxID int) *Sweeper {
	s := NewSweeper(store, dir, dir, nil, "", 4, maxID, maxID)
	s.now = func() time.Time { return time.Date(2026, 8, 29, 9, 0, 0, 0, time.UTC) }
	return s
}

func TestSweepMembersClassifiesByEndDate(t *testing.T) {
	store := memory.NewArchiveStore()
	dir := &stubDirectory{members: map[int]domain.RawRecord{
		1: rawMember(1, "Smith, Mr John Paul", 1, nil),
		3: rawMember(3, "Brown of Leeds, Lord", 2, nil),
		7: rawMember(7, "Jones, Ms Mary", 1, "2019-11-06T00:00:00"),
	}}
	sweeper := newTestSweeper(store, dir, 10)

	report, err := sweeper.SweepMembers(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 10, report.Probed)
	assert.Equal(t, 3, report.Found)
	assert.Equal(t, 2, report.ActiveAdded)
	assert.Equal(t, 1, report.FormerAdded)
	assert.Equal(t, 0, report.FailedProbes)

	assert.Equal(t, 2, store.Rows(domain.MembersActive.Filename()))
	assert.Equal(t, 1, store.Rows(domain.MembersFormer.Filename()))

	_, active, err := store.Load(context.Background(), domain.MembersActive.Filename())
	require.NoError(t, err)
	require.Len(t, active, 2)
	commons := active[0]
	assert.Equal(t, "1", commons["id"])
	assert.Equal(t, "Commons", commons["latestHouseMembershiphouse"])
	assert.Equal(t, "Smith", commons["surname"])
	// Honorific stripped, truncated to the first token.
	assert.Equal(t, "John", commons["firstname"])
	// The Lords archive carries no first names.
	assert.Equal(t, "", active[1]["firstname"])
}

func TestSweepMembersWritesHouseViews(t *testing.T) {
	store := memory.NewArchiveStore()
	dir := &stubDirectory{members: map[int]domain.RawRecord{
		1: rawMember(1, "Smith, Mr John", 1, nil),
		2: rawMember(2, "Brown of Leeds, Lord", 2, nil),
		3: rawMember(3, "Jones, Ms Mary", 1, "2019-11-06T00:00:00"),
	}}
	sweeper := newTestSweeper(store, dir, 5)

	_, err := sweeper.SweepMembers(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, store.Rows(CommonsViewFile))
	assert.Equal(t, 1, store.Rows(LordsViewFile))

	_, parties, err := store.Load(context.Background(), PartiesFile)
	require.NoError(t, err)
	require.Len(t, parties, 1)
	assert.Equal(t, "Labour", parties[0]["party"])
	assert.Equal(t, "2", parties[0]["members"])
}

func TestSweepMembersRerunAddsNothing(t *testing.T) {
	store := memory.NewArchiveStore()
	dir := &stubDirectory{members: map[int]domain.RawRecord{
		1: rawMember(1, "Smith, Mr John", 1, nil),
		2: rawMember(2, "Jones, Ms Mary", 1, "2019-11-06T00:00:00"),
	}}
	sweeper := newTestSweeper(store, dir, 5)
	ctx := context.Background()

	_, err := sweeper.SweepMembers(ctx)
	require.NoError(t, err)

	second, err := sweeper.SweepMembers(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, second.ActiveAdded)
	assert.Equal(t, 0, second.FormerAdded)
}

func TestSweepMembersToleratesProbeFailures(t *testing.T) {
	store := memory.NewArchiveStore()
	dir := &stubDirectory{
		members: map[int]domain.RawRecord{
			1: rawMember(1, "Smith, Mr John", 1, nil),
			4: rawMember(4, "Jones, Ms Mary", 1, nil),
		},
		memberErrs: map[int]error{3: errors.New("gateway timeout")},
	}
	sweeper := newTestSweeper(store, dir, 5)

	report, err := sweeper.SweepMembers(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, report.FailedProbes)
	assert.Equal(t, 2, report.Found)
	assert.Equal(t, 2, report.ActiveAdded)
}

func TestSweepMembersDropsMalformedPayloads(t *testing.T) {
	store := memory.NewArchiveStore()
	broken := domain.RawRecord{"id": float64(2)} // no nameListAs
	dir := &stubDirectory{members: map[int]domain.RawRecord{
		1: rawMember(1, "Smith, Mr John", 1, nil),
		2: broken,
	}}
	sweeper := newTestSweeper(store, dir, 5)

	report, err := sweeper.SweepMembers(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, report.Found)
	assert.Equal(t, 1, report.Dropped)
	assert.Equal(t, 1, report.ActiveAdded)
}

func TestSweepConstituenciesClassifiesByEndDate(t *testing.T) {
	store := memory.NewArchiveStore()
	dir := &stubDirectory{constituencies: map[int]domain.RawRecord{
		1: rawConstituency(1, "Leeds Central", nil),
		5: rawConstituency(5, "Leeds North West", "2024-05-30T00:00:00"),
	}}
	sweeper := newTestSweeper(store, dir, 8)

	report, err := sweeper.SweepConstituencies(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 2, report.Found)
	assert.Equal(t, 1, report.ActiveAdded)
	assert.Equal(t, 1, report.FormerAdded)
	assert.Equal(t, 1, store.Rows(domain.ConstituenciesActive.Filename()))
	assert.Equal(t, 1, store.Rows(domain.ConstituenciesFormer.Filename()))

	_, active, err := store.Load(context.Background(), domain.ConstituenciesActive.Filename())
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, "Leeds Central", active[0]["name"])
	assert.Equal(t, "Hilary Benn", active[0]["currentRepresentation_member_value_nameDisplayAs"])
}

func TestPartyCountsUsesNewestRowPerMember(t *testing.T) {
	records := []domain.Record{
		{"id": "1", "latestPartyname": "Labour"},
		{"id": "2", "latestPartyname": "Conservative"},
		{"id": "3", "latestPartyname": "Labour"},
		// Member 2 crossed the floor; only the newer row counts.
		{"id": "2", "latestPartyname": "Independent"},
	}

	counts := PartyCounts(records)
	require.Len(t, counts, 2)
	assert.Equal(t, PartyCount{Party: "Labour", Members: 2}, counts[0])
	assert.Equal(t, PartyCount{Party: "Independent", Members: 1}, counts[1])
}
