package models

// DomainBreach is one publicly known breach of a site.
type DomainBreach struct {
	Name                string   `json:"name"`
	BreachDate          string   `json:"breach_date"`
	CompromisedAccounts int64    `json:"compromised_accounts"`
	DataClasses         []string `json:"data_classes"`
}

// DomainBreachStatus is the breach history of one domain. Checked is false
// when the lookup failed or no domain checker is configured.
type DomainBreachStatus struct {
	Domain      string         `json:"domain"`
	Checked     bool           `json:"checked"`
	HasBreaches bool           `json:"has_breaches"`
	BreachCount int            `json:"breach_count"`
	Breaches    []DomainBreach `json:"breaches"`
}

// DomainReport summarizes a batch of domain lookups.
type DomainReport struct {
	DomainsChecked      int                  `json:"domains_checked"`
	DomainsWithBreaches int                  `json:"domains_with_breaches"`
	Results             []DomainBreachStatus `json:"results"`
}
