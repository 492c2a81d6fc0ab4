package importsheet

import "fmt"

type Namespace int

const (
	Persons Namespace = iota
	Entities
)

// IdentityLinks maps spreadsheet-local identifiers to generated ids for one
// import run. Persons and entities are separate namespaces. Local id 0 means
// "not supplied" and is never recorded nor resolved.
type IdentityLinks struct {
	persons  map[int64]int64
	entities map[int64]int64
}

func NewIdentityLinks() *IdentityLinks {
	return &IdentityLinks{
		persons:  map[int64]int64{},
		entities: map[int64]int64{},
	}
}

func (l *IdentityLinks) space(ns Namespace) map[int64]int64 {
	if ns == Entities {
		return l.entities
	}
	return l.persons
}

func (l *IdentityLinks) Record(ns Namespace, localID, generatedID int64) {
	if localID == 0 {
		return
	}
	l.space(ns)[localID] = generatedID
}

func (l *IdentityLinks) Resolve(ns Namespace, localID int64) (int64, bool) {
	if localID == 0 {
		return 0, false
	}
	id, ok := l.space(ns)[localID]
	return id, ok
}

func (l *IdentityLinks) Len(ns Namespace) int {
	return len(l.space(ns))
}

// LocalRef returns the worksheet row and local identifier of a record.
func (r PhysicalPersonRecord) LocalRef() (int, int64) { return r.Row, r.LocalID }

func (r LegalEntityRecord) LocalRef() (int, int64) { return r.Row, r.LocalID }

// CheckLocalIDs rejects the first row reusing a local identifier already
// carried by an earlier row of the sheet. Blank identifiers may repeat.
func CheckLocalIDs[T any](sheet string, records []T, ref func(T) (int, int64)) error {
	first := make(map[int64]int, len(records))
	for _, rec := range records {
		row, id := ref(rec)
		if id == 0 {
			continue
		}
		if prev, taken := first[id]; taken {
			return &RowError{
				Sheet:  sheet,
				Row:    row,
				Field:  ColLocalID,
				Reason: ReasonDuplicateID,
				Value:  fmt.Sprintf("%d, ligne %d", id, prev),
			}
		}
		first[id] = row
	}
	return nil
}
