package importsheet

// Summary counts the records created by a successful import.
type Summary struct {
	PhysicalPersons int  `json:"physical_persons"`
	Projects        int  `json:"projects"`
	LegalEntities   int  `json:"legal_entities"`
	Relations       int  `json:"relations"`
	DryRun          bool `json:"dry_run,omitempty"`
}

func (s Summary) Total() int {
	return s.PhysicalPersons + s.Projects + s.LegalEntities + s.Relations
}
