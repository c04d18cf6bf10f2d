package checkout

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SanderJevnaker/payload-svea-adapter/internal/svea"
)

func TestLocaleFor(t *testing.T) {
	assert.Equal(t, "sv-SE", LocaleFor("SE"))
	assert.Equal(t, "sv-SE", LocaleFor("se"))
	assert.Equal(t, "nb-NO", LocaleFor("NO"))
	assert.Equal(t, "fi-FI", LocaleFor("FI"))
	assert.Equal(t, "da-DK", LocaleFor("DK"))
	assert.Equal(t, "de-DE", LocaleFor("DE"))
	assert.Equal(t, "sv-SE", LocaleFor("FR"), "unknown countries fall back to Swedish")
	assert.Equal(t, "sv-SE", LocaleFor(""))
}

func TestMapProviderAddress_StructuredForm(t *testing.T) {
	out := MapProviderAddress(&svea.Address{
		FirstName:     "Eva",
		LastName:      "Lind",
		StreetAddress: "Sveavägen 1",
		CoAddress:     "c/o Berg",
		City:          "Stockholm",
		PostalCode:    "11157",
		CountryCode:   "SE",
		PhoneNumber:   "+46701234567",
	})

	require.NotNil(t, out)
	assert.Equal(t, "Eva", out.FirstName)
	assert.Equal(t, "Lind", out.LastName)
	assert.Equal(t, "Sveavägen 1", out.Line1)
	assert.Equal(t, "c/o Berg", out.Line2)
	assert.Equal(t, "Stockholm", out.City)
	assert.Equal(t, "SE", out.Country)
	assert.Equal(t, "+46701234567", out.Phone)
}

func TestMapProviderAddress_FullNameForm(t *testing.T) {
	out := MapProviderAddress(&svea.Address{
		FullName:     "Eva Maria Lind",
		AddressLines: []string{"Sveavägen 1", "c/o Berg"},
		City:         "Stockholm",
	})

	require.NotNil(t, out)
	assert.Equal(t, "Eva", out.FirstName)
	assert.Equal(t, "Maria Lind", out.LastName, "everything after the first space is the last name")
	assert.Equal(t, "Sveavägen 1", out.Line1)
	assert.Equal(t, "c/o Berg", out.Line2)
}

func TestMapProviderAddress_SingleWordFullName(t *testing.T) {
	out := MapProviderAddress(&svea.Address{FullName: "Cher"})
	assert.Equal(t, "Cher", out.FirstName)
	assert.Empty(t, out.LastName)
}

func TestMapProviderAddress_StructuredFieldsWin(t *testing.T) {
	out := MapProviderAddress(&svea.Address{
		FirstName:     "Eva",
		FullName:      "Someone Else",
		StreetAddress: "Sveavägen 1",
		AddressLines:  []string{"Other street 2"},
	})
	assert.Equal(t, "Eva", out.FirstName)
	assert.Equal(t, "Sveavägen 1", out.Line1)
}

func TestMapProviderAddress_Nil(t *testing.T) {
	assert.Nil(t, MapProviderAddress(nil))
}
