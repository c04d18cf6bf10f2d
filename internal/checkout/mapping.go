package checkout

import (
	"strings"

	"github.com/SanderJevnaker/payload-svea-adapter/internal/store"
	"github.com/SanderJevnaker/payload-svea-adapter/internal/svea"
)

// locales maps merchant country codes to the checkout locale tag Svea expects.
var locales = map[string]string{
	"SE": "sv-SE",
	"NO": "nb-NO",
	"FI": "fi-FI",
	"DK": "da-DK",
	"DE": "de-DE",
}

// LocaleFor returns the checkout locale for a country code, defaulting to
// Swedish.
func LocaleFor(countryCode string) string {
	if loc, ok := locales[strings.ToUpper(countryCode)]; ok {
		return loc
	}
	return "sv-SE"
}

// MapProviderAddress translates a Svea address into the host shape. Svea
// reports either structured name/street fields or FullName plus AddressLines
// depending on payment type; both forms are handled.
func MapProviderAddress(a *svea.Address) *store.Address {
	if a == nil {
		return nil
	}

	out := &store.Address{
		FirstName:  a.FirstName,
		LastName:   a.LastName,
		Line1:      a.StreetAddress,
		Line2:      a.CoAddress,
		City:       a.City,
		PostalCode: a.PostalCode,
		Country:    a.CountryCode,
		Phone:      a.PhoneNumber,
	}

	if out.FirstName == "" && a.FullName != "" {
		first, last, ok := strings.Cut(a.FullName, " ")
		out.FirstName = first
		if ok {
			out.LastName = last
		}
	}
	if out.Line1 == "" && len(a.AddressLines) > 0 {
		out.Line1 = a.AddressLines[0]
		if out.Line2 == "" && len(a.AddressLines) > 1 {
			out.Line2 = a.AddressLines[1]
		}
	}

	return out
}
