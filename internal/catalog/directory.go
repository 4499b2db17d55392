package catalog

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/disputekit/disputekit-server/internal/domain"
)

var binPattern = regexp.MustCompile(`^\d{6}$`)

// defaultDisputeOffices are the mailing addresses printed on letters.
var defaultDisputeOffices = map[string]domain.DisputeOffice{
	"chase":            {Name: "Chase Dispute Dept.", Address: "P.O. Box 15299, Wilmington, DE 19850-5299"},
	"capital one":      {Name: "Capital One Dispute Dept.", Address: "P.O. Box 30285, Salt Lake City, UT 84130"},
	"visa":             {Name: "Visa Chargeback Dept.", Address: "900 Metro Center Blvd, Foster City, CA 94404"},
	"mastercard":       {Name: "Mastercard Dispute Dept.", Address: "2000 Purchase Street, Purchase, NY 10577"},
	"american express": {Name: "AmEx Dispute Dept.", Address: "P.O. Box 981540, El Paso, TX 79998"},
}

// GenericDisputeOffice is used when the issuer is unknown.
var GenericDisputeOffice = domain.DisputeOffice{
	Name:    "Dispute Dept.",
	Address: "Please contact your card issuer for correct address.",
}

// Directory resolves BINs, issuer contacts and dispute offices.
type Directory struct {
	bins    map[string]domain.BinInfo
	issuers map[string]domain.IssuerContact
}

// NewDirectory builds a directory. Issuer names are matched case-insensitively.
func NewDirectory(bins map[string]domain.BinInfo, issuers map[string]domain.IssuerContact) *Directory {
	d := &Directory{
		bins:    make(map[string]domain.BinInfo, len(bins)),
		issuers: make(map[string]domain.IssuerContact, len(issuers)),
	}
	for bin, info := range bins {
		if info.BIN == "" {
			info.BIN = bin
		}
		info.Network = domain.NormalizeNetwork(info.Network)
		d.bins[bin] = info
	}
	for name, contact := range issuers {
		if contact.Name == "" {
			contact.Name = name
		}
		d.issuers[issuerKey(name)] = contact
	}
	return d
}

// LookupBin validates and resolves a six-digit BIN.
func (d *Directory) LookupBin(bin string) (domain.BinInfo, error) {
	bin = strings.TrimSpace(bin)
	if !binPattern.MatchString(bin) {
		return domain.BinInfo{}, domain.NewValidationError("bin", "BIN must be exactly 6 digits", bin)
	}
	info, ok := d.bins[bin]
	if !ok {
		return domain.BinInfo{}, fmt.Errorf("bin %s: %w", bin, domain.ErrNotFound)
	}
	return info, nil
}

// IssuerContact returns the contact sheet for an issuer.
func (d *Directory) IssuerContact(name string) (domain.IssuerContact, error) {
	contact, ok := d.issuers[issuerKey(name)]
	if !ok {
		return domain.IssuerContact{}, fmt.Errorf("issuer %q: %w", name, domain.ErrNotFound)
	}
	return contact, nil
}

// DisputeOffice returns the letter recipient for an issuer, falling back to a
// generic department.
func (d *Directory) DisputeOffice(issuer string) domain.DisputeOffice {
	if office, ok := defaultDisputeOffices[issuerKey(issuer)]; ok {
		return office
	}
	if contact, ok := d.issuers[issuerKey(issuer)]; ok && contact.MailingAddress != "" {
		return domain.DisputeOffice{Name: contact.Name + " Dispute Dept.", Address: contact.MailingAddress}
	}
	return GenericDisputeOffice
}

// BinCount returns the number of known BINs.
func (d *Directory) BinCount() int {
	return len(d.bins)
}

func issuerKey(name string) string {
	return strings.ToLower(strings.Join(strings.Fields(name), " "))
}
