package domain

// BinInfo describes a card's issuing bank from its first six digits.
type BinInfo struct {
	BIN         string `json:"bin" yaml:"bin"`
	Network     string `json:"network" yaml:"network"`
	Issuer      string `json:"issuer,omitempty" yaml:"issuer,omitempty"`
	CardType    string `json:"cardType,omitempty" yaml:"cardType,omitempty"`
	CardSubType string `json:"cardSubType,omitempty" yaml:"cardSubType,omitempty"`
	Country     string `json:"country,omitempty" yaml:"country,omitempty"`
}

// IssuerContact lists the ways to file a dispute with an issuer.
type IssuerContact struct {
	Name            string `json:"name" yaml:"name"`
	PhoneSupport    string `json:"phoneSupport,omitempty" yaml:"phoneSupport,omitempty"`
	Fax             string `json:"fax,omitempty" yaml:"fax,omitempty"`
	UploadPortal    string `json:"uploadPortal,omitempty" yaml:"uploadPortal,omitempty"`
	MailingAddress  string `json:"mailingAddress,omitempty" yaml:"mailingAddress,omitempty"`
	SubmissionNotes string `json:"submissionNotes,omitempty" yaml:"submissionNotes,omitempty"`
}

// DisputeOffice is the letter recipient block.
type DisputeOffice struct {
	Name    string `json:"name"`
	Address string `json:"address"`
}
