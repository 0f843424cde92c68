package types

// CorrelatedRecord is one equity row with the disclosures filed under its code.
type CorrelatedRecord struct {
	EquityRow
	// DisclosureCount is the total number of matches, not capped by TopDisclosures
	DisclosureCount int              `json:"disclosure_count"`
	TopDisclosures  []DisclosureLink `json:"top_disclosures"`
}

// HasDisclosures reports whether any disclosure matched the record's code.
func (r CorrelatedRecord) HasDisclosures() bool {
	return r.DisclosureCount > 0
}

// Summary counts equities with and without matching disclosures.
type Summary struct {
	Total              int `json:"total"`
	WithDisclosures    int `json:"with_disclosures"`
	WithoutDisclosures int `json:"without_disclosures"`
}
