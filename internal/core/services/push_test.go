package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/westminster-data/parlsync/internal/adapters/driven/storage/memory"
	"github.com/westminster-data/parlsync/internal/core/domain"
	"github.com/westminster-data/parlsync/internal/core/ports/driven"
	"github.com/westminster-data/parlsync/internal/normalisers/member"
)

// stubSink implements driven.CRMSink over fixed maps and records upserts.
type stubSink struct {
	existing     map[int]bool
	existsErrs   map[int]error
	upsertResult map[int]driven.UpsertResult
	upserts      []domain.Contact
}

func (s *stubSink) Exists(_ context.Context, parliamentID int) (bool, error) {
	if err := s.existsErrs[parliamentID]; err != nil {
		return false, err
	}
	return s.existing[parliamentID], nil
}

func (s *stubSink) Upsert(_ context.Context, contact domain.Contact) (driven.UpsertResult, error) {
	s.upserts = append(s.upserts, contact)
	return s.upsertResult[contact.ParliamentID], nil
}

// memberRecord builds an archive row with the columns the pusher reads.
func memberRecord(id, display, firstname, surname, party, house string) domain.Record {
	return domain.Record{
		"id":                         id,
		"nameDisplayAs":              display,
		"firstname":                  firstname,
		"surname":                    surname,
		"latestPartyname":            party,
		"latestHouseMembershiphouse": house,
	}
}

func seedActiveMembers(t *testing.T, store *memory.ArchiveStore, records ...domain.Record) {
	t.Helper()
	schema := member.New().Schema()
	for i := range records {
		records[i] = domain.Project(records[i], schema)
	}
	require.NoError(t, store.Save(context.Background(), domain.MembersActive.Filename(), schema, records))
}

func TestPushCreatesMissingCommonsMembers(t *testing.T) {
	store := memory.NewArchiveStore()
	seedActiveMembers(t, store,
		memberRecord("1", "John Smith", "John", "Smith", "Labour", "Commons"),
		memberRecord("2", "Mary Jones", "Mary", "Jones", "Conservative", "Commons"),
		memberRecord("3", "Lord Brown of Leeds", "", "Brown of Leeds", "Crossbench", "Lords"),
	)
	sink := &stubSink{existing: map[int]bool{2: true}}
	pusher := NewPusher(store, sink, "")

	report, err := pusher.PushActiveCommons(context.Background())
	require.NoError(t, err)

	// Lords are out of scope for the CRM.
	assert.Equal(t, 2, report.Checked)
	assert.Equal(t, 1, report.Created)
	assert.Equal(t, 1, report.AlreadyPresent)
	assert.Equal(t, 0, report.Failed)

	require.Len(t, sink.upserts, 1)
	contact := sink.upserts[0]
	assert.Equal(t, 1, contact.ParliamentID)
	assert.Equal(t, "John Smith", contact.DisplayName)
	assert.Equal(t, "Labour", contact.Party)
	assert.Equal(t, "Commons", contact.House)
}

func TestPushFlagsDuplicateContacts(t *testing.T) {
	store := memory.NewArchiveStore()
	seedActiveMembers(t, store,
		memberRecord("1", "John Smith", "John", "Smith", "Labour", "Commons"),
	)
	sink := &stubSink{upsertResult: map[int]driven.UpsertResult{1: driven.UpsertDuplicate}}
	pusher := NewPusher(store, sink, "")

	report, err := pusher.PushActiveCommons(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, report.Duplicates)
	assert.Equal(t, 0, report.Created)
}

func TestPushUsesNewestRowPerMember(t *testing.T) {
	store := memory.NewArchiveStore()
	seedActiveMembers(t, store,
		memberRecord("1", "John Smith", "John", "Smith", "Labour", "Commons"),
		memberRecord("1", "John Smith", "John", "Smith", "Independent", "Commons"),
	)
	sink := &stubSink{}
	pusher := NewPusher(store, sink, "")

	report, err := pusher.PushActiveCommons(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, report.Checked)
	require.Len(t, sink.upserts, 1)
	assert.Equal(t, "Independent", sink.upserts[0].Party)
}

func TestPushToleratesSinkErrors(t *testing.T) {
	store := memory.NewArchiveStore()
	seedActiveMembers(t, store,
		memberRecord("1", "John Smith", "John", "Smith", "Labour", "Commons"),
		memberRecord("2", "Mary Jones", "Mary", "Jones", "Conservative", "Commons"),
	)
	sink := &stubSink{existsErrs: map[int]error{1: errors.New("api key rejected")}}
	pusher := NewPusher(store, sink, "")

	report, err := pusher.PushActiveCommons(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, report.Failed)
	assert.Equal(t, 1, report.Created)
}

func TestPushWithoutArchiveFails(t *testing.T) {
	pusher := NewPusher(memory.NewArchiveStore(), &stubSink{}, "")

	_, err := pusher.PushActiveCommons(context.Background())
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
