package domainintel

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

const sampleWhois = `Domain Name: EXAMPLE.COM
Registry Domain ID: 2336799_DOMAIN_COM-VRSN
Registrar WHOIS Server: whois.iana.org
Registrar URL: http://res-dom.iana.org
Updated Date: 2024-08-14T07:01:44Z
Creation Date: 1995-08-14T04:00:00Z
Registry Expiry Date: 2026-08-13T04:00:00Z
Registrar: RESERVED-Internet Assigned Numbers Authority
Registrar IANA ID: 376
Domain Status: clientDeleteProhibited https://icann.org/epp#clientDeleteProhibited
Name Server: A.IANA-SERVERS.NET
Name Server: B.IANA-SERVERS.NET
DNSSEC: signedDelegation
`

func TestLookupWhois(t *testing.T) {
	t.Run("ParsesCreationDateAndRegistrar", func(t *testing.T) {
		l := New(time.Second, true)
		l.whoisQuery = func(domain string) (string, error) {
			require.Equal(t, "example.com", domain)
			return sampleWhois, nil
		}

		report, err := l.lookupWhois("example.com")
		require.NoError(t, err)
		require.Equal(t, "example.com", report.Domain)
		require.Equal(t, "whois", report.Source)
		require.Equal(t, 1995, report.RegisteredAt.Year())
		require.Contains(t, report.Registrar, "Internet Assigned Numbers Authority")
	})

	t.Run("QueryFailure", func(t *testing.T) {
		l := New(time.Second, true)
		l.whoisQuery = func(domain string) (string, error) {
			return "", errors.New("connection refused")
		}

		_, err := l.lookupWhois("example.com")
		require.Error(t, err)
	})

	t.Run("UnparsableResponse", func(t *testing.T) {
		l := New(time.Second, true)
		l.whoisQuery = func(domain string) (string, error) {
			return "No match for domain", nil
		}

		_, err := l.lookupWhois("example.com")
		require.Error(t, err)
	})
}

func TestLookupValidatesHost(t *testing.T) {
	l := New(time.Second, false)

	_, err := l.Lookup(context.Background(), "")
	require.Error(t, err)

	_, err = l.Lookup(context.Background(), "localhost")
	require.Error(t, err)
}

func TestParseEventDate(t *testing.T) {
	cases := map[string]string{
		"RFC3339":    "1995-08-14T04:00:00Z",
		"SpaceTime":  "1995-08-14 04:00:00",
		"DateOnly":   "1995-08-14",
		"DayMonth":   "14-Aug-1995",
		"DotsFormat": "1995.08.14",
	}
	for name, value := range cases {
		t.Run(name, func(t *testing.T) {
			parsed, err := parseEventDate(value)
			require.NoError(t, err)
			require.Equal(t, 1995, parsed.Year())
			require.Equal(t, time.August, parsed.Month())
			require.Equal(t, 14, parsed.Day())
		})
	}

	t.Run("Empty", func(t *testing.T) {
		_, err := parseEventDate("  ")
		require.Error(t, err)
	})

	t.Run("Unrecognized", func(t *testing.T) {
		_, err := parseEventDate("yesterday")
		require.Error(t, err)
	})
}

func TestHumanizeAge(t *testing.T) {
	day := 24 * time.Hour
	require.Equal(t, "less than a day", humanizeAge(6*time.Hour))
	require.Equal(t, "12 days", humanizeAge(12*day))
	require.Equal(t, "about 3 months", humanizeAge(100*day))
	require.Equal(t, "about 1 year", humanizeAge(400*day))
	require.Equal(t, "about 5 years", humanizeAge(5*365*day))
}

func TestReportSummary(t *testing.T) {
	t.Run("WithRegistrar", func(t *testing.T) {
		report := &Report{
			Domain:       "example.com",
			RegisteredAt: time.Date(1995, 8, 14, 0, 0, 0, 0, time.UTC),
			Registrar:    "IANA",
			Source:       "rdap",
		}
		summary := report.Summary()
		require.Contains(t, summary, "example.com")
		require.Contains(t, summary, "1995-08-14")
		require.Contains(t, summary, "Registrar: IANA.")
	})

	t.Run("WithoutRegistrar", func(t *testing.T) {
		report := &Report{
			Domain:       "example.com",
			RegisteredAt: time.Date(2025, 1, 2, 0, 0, 0, 0, time.UTC),
		}
		require.NotContains(t, report.Summary(), "Registrar")
	})

	t.Run("ZeroDateIsEmpty", func(t *testing.T) {
		require.Empty(t, (&Report{Domain: "example.com"}).Summary())
		var nilReport *Report
		require.Empty(t, nilReport.Summary())
	})
}
