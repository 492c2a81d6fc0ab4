package importsheet

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestIdentityLinks(t *testing.T) {
	links := NewIdentityLinks()
	links.Record(Persons, 7, 42)
	links.Record(Entities, 7, 99)
	links.Record(Persons, 0, 13)

	id, ok := links.Resolve(Persons, 7)
	require.True(t, ok)
	require.Equal(t, int64(42), id)

	id, ok = links.Resolve(Entities, 7)
	require.True(t, ok)
	require.Equal(t, int64(99), id)

	_, ok = links.Resolve(Persons, 0)
	require.False(t, ok)
	_, ok = links.Resolve(Entities, 8)
	require.False(t, ok)

	require.Equal(t, 1, links.Len(Persons))
	require.Equal(t, 1, links.Len(Entities))
}

func TestCheckLocalIDs(t *testing.T) {
	records := []PhysicalPersonRecord{
		{Row: 2, LocalID: 7},
		{Row: 3},
		{Row: 4},
		{Row: 5, LocalID: 8},
	}
	require.NoError(t, CheckLocalIDs(SheetPhysicalPersons, records, PhysicalPersonRecord.LocalRef))

	records = append(records, PhysicalPersonRecord{Row: 6, LocalID: 7})
	err := CheckLocalIDs(SheetPhysicalPersons, records, PhysicalPersonRecord.LocalRef)
	requireRowError(t, err, SheetPhysicalPersons, 6, ColLocalID, ReasonDuplicateID)
	require.Contains(t, err.Error(), "ligne 2")
}
