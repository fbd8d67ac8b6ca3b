package entity

// Page is one slice of a deals listing.
type Page struct {
	Offset  int    `json:"offset"`
	Limit   int    `json:"limit"`
	Deals   []Deal `json:"deals"`
	HasMore bool   `json:"hasMore"`
}

func (p Page) NextOffset() int {
	return p.Offset + p.Limit
}

// Validate checks every deal of the page.
func (p Page) Validate() error {
	for i := range p.Deals {
		if err := p.Deals[i].Validate(); err != nil {
			return err
		}
	}

	return nil
}
