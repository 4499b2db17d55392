package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/disputekit/disputekit-server/internal/domain"
)

func TestDirectory_LookupBin(t *testing.T) {
	d := NewDirectory(map[string]domain.BinInfo{
		"414720": {Network: "VISA", Issuer: "Chase", CardType: "credit"},
	}, nil)

	tests := []struct {
		name    string
		bin     string
		wantErr error
	}{
		{"known", "414720", nil},
		{"unknown", "999999", domain.ErrNotFound},
		{"too short", "4147", domain.ErrMalformedInput},
		{"letters", "41472a", domain.ErrMalformedInput},
		{"too long", "4147201", domain.ErrMalformedInput},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			info, err := d.LookupBin(tt.bin)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "414720", info.BIN)
			assert.Equal(t, "visa", info.Network)
			assert.Equal(t, "Chase", info.Issuer)
		})
	}
}

func TestDirectory_IssuerContact(t *testing.T) {
	d := NewDirectory(nil, map[string]domain.IssuerContact{
		"Capital One": {PhoneSupport: "1-800-227-4825"},
	})

	contact, err := d.IssuerContact("capital  one")
	require.NoError(t, err)
	assert.Equal(t, "Capital One", contact.Name)
	assert.Equal(t, "1-800-227-4825", contact.PhoneSupport)

	_, err = d.IssuerContact("Acme Bank")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestDirectory_DisputeOffice(t *testing.T) {
	d := NewDirectory(nil, map[string]domain.IssuerContact{
		"Acme Bank": {MailingAddress: "1 Acme Way, Springfield"},
	})

	assert.Equal(t, "Chase Dispute Dept.", d.DisputeOffice("Chase").Name)
	assert.Equal(t, "AmEx Dispute Dept.", d.DisputeOffice("American Express").Name)
	assert.Equal(t, domain.DisputeOffice{Name: "Acme Bank Dispute Dept.", Address: "1 Acme Way, Springfield"}, d.DisputeOffice("acme bank"))
	assert.Equal(t, GenericDisputeOffice, d.DisputeOffice("Unknown Credit Union"))
	assert.Equal(t, GenericDisputeOffice, d.DisputeOffice(""))
}
