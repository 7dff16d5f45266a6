// Package domainintel looks up factual registration data for a domain so the
// reasoning engine can ground its domain-age assessment. RDAP is the primary
// source with a WHOIS fallback. Lookups are best-effort enrichment: callers
// degrade to an un-enriched prompt on any failure.
package domainintel

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/likexian/whois"
	whoisparser "github.com/likexian/whois-parser"
	"github.com/openrdap/rdap"
)

const (
	sourceRDAP  = "rdap"
	sourceWhois = "whois"

	defaultLookupTimeout = 10 * time.Second
)

// Report carries the registration facts found for a domain.
type Report struct {
	Domain       string
	RegisteredAt time.Time
	Registrar    string
	Source       string
}

// Summary renders the report as a short factual statement for prompt
// enrichment.
func (r *Report) Summary() string {
	if r == nil || r.RegisteredAt.IsZero() {
		return ""
	}
	var b strings.Builder
	fmt.Fprintf(&b, "The domain %s was registered on %s (%s ago).",
		r.Domain, r.RegisteredAt.Format("2006-01-02"), humanizeAge(time.Since(r.RegisteredAt)))
	if r.Registrar != "" {
		fmt.Fprintf(&b, " Registrar: %s.", r.Registrar)
	}
	return b.String()
}

// Lookup resolves registration data for domains.
type Lookup struct {
	Client        *rdap.Client
	Timeout       time.Duration
	WhoisFallback bool

	// whoisQuery is a seam for tests; defaults to whois.Whois.
	whoisQuery func(domain string) (string, error)
}

// New returns a lookup with defaults applied.
func New(timeout time.Duration, whoisFallback bool) *Lookup {
	if timeout <= 0 {
		timeout = defaultLookupTimeout
	}
	return &Lookup{
		Timeout:       timeout,
		WhoisFallback: whoisFallback,
	}
}

// Lookup finds registration facts for the host. For subdomains the
// registrable parent is tried when the host itself yields nothing.
func (l *Lookup) Lookup(ctx context.Context, host string) (*Report, error) {
	if l == nil {
		return nil, errors.New("domain intel lookup not configured")
	}

	domain := strings.ToLower(strings.TrimSpace(host))
	if domain == "" || !strings.Contains(domain, ".") {
		return nil, fmt.Errorf("host %q is not a domain", host)
	}

	report, err := l.lookupDomain(ctx, domain)
	if err == nil {
		return report, nil
	}

	// For subdomains, retry the parent (e.g. pay.shop.example.xyz -> example.xyz).
	parts := strings.Split(domain, ".")
	for len(parts) > 2 {
		parts = parts[1:]
		parent := strings.Join(parts, ".")
		if report, parentErr := l.lookupDomain(ctx, parent); parentErr == nil {
			return report, nil
		}
	}

	return nil, err
}

func (l *Lookup) lookupDomain(ctx context.Context, domain string) (*Report, error) {
	report, rdapErr := l.lookupRDAP(ctx, domain)
	if rdapErr == nil {
		return report, nil
	}

	if l.WhoisFallback {
		if report, whoisErr := l.lookupWhois(domain); whoisErr == nil {
			return report, nil
		}
	}

	return nil, rdapErr
}

func (l *Lookup) lookupRDAP(ctx context.Context, domain string) (*Report, error) {
	client := l.Client
	if client == nil {
		client = &rdap.Client{}
	}

	req := rdap.NewDomainRequest(domain)
	if l.Timeout > 0 {
		req.Timeout = l.Timeout
	}
	req = req.WithContext(ctx)

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("rdap lookup %s: %w", domain, err)
	}

	rdapDomain, ok := resp.Object.(*rdap.Domain)
	if !ok {
		return nil, fmt.Errorf("rdap lookup %s: unexpected response object", domain)
	}

	registered := findEventDate(rdapDomain.Events, "registration")
	if registered == "" {
		return nil, fmt.Errorf("rdap lookup %s: no registration event", domain)
	}
	registeredAt, err := parseEventDate(registered)
	if err != nil {
		return nil, fmt.Errorf("rdap lookup %s: %w", domain, err)
	}

	return &Report{
		Domain:       domain,
		RegisteredAt: registeredAt,
		Registrar:    findRegistrar(rdapDomain),
		Source:       sourceRDAP,
	}, nil
}

func (l *Lookup) lookupWhois(domain string) (*Report, error) {
	query := l.whoisQuery
	if query == nil {
		query = func(domain string) (string, error) {
			return whois.Whois(domain)
		}
	}

	raw, err := query(domain)
	if err != nil {
		return nil, fmt.Errorf("whois lookup %s: %w", domain, err)
	}

	parsed, err := whoisparser.Parse(raw)
	if err != nil || parsed.Domain == nil {
		return nil, fmt.Errorf("whois parse %s: %w", domain, err)
	}

	report := &Report{Domain: domain, Source: sourceWhois}
	if parsed.Registrar != nil {
		report.Registrar = parsed.Registrar.Name
	}

	if parsed.Domain.CreatedDateInTime != nil {
		report.RegisteredAt = parsed.Domain.CreatedDateInTime.UTC()
		return report, nil
	}

	created, err := parseEventDate(strings.TrimSpace(parsed.Domain.CreatedDate))
	if err != nil {
		return nil, fmt.Errorf("whois parse %s: no usable creation date", domain)
	}
	report.RegisteredAt = created
	return report, nil
}

func findEventDate(events []rdap.Event, action string) string {
	for _, event := range events {
		if event.Action == action {
			return event.Date
		}
	}
	return ""
}

func findRegistrar(domain *rdap.Domain) string {
	if domain == nil {
		return ""
	}
	for _, entity := range domain.Entities {
		for _, role := range entity.Roles {
			if role == "registrar" && entity.VCard != nil {
				return entity.VCard.Name()
			}
		}
	}
	return ""
}

var eventDateLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05Z0700",
	"2006-01-02 15:04:05",
	"2006-01-02",
	"02-Jan-2006",
	"2006.01.02",
}

func parseEventDate(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, errors.New("empty date")
	}
	for _, layout := range eventDateLayouts {
		if parsed, err := time.Parse(layout, value); err == nil {
			return parsed.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized date %q", value)
}

func humanizeAge(age time.Duration) string {
	days := int(age.Hours() / 24)
	switch {
	case days < 1:
		return "less than a day"
	case days < 31:
		return fmt.Sprintf("%d days", days)
	case days < 365:
		return fmt.Sprintf("about %d months", days/30)
	case days < 730:
		return "about 1 year"
	default:
		return fmt.Sprintf("about %d years", days/365)
	}
}
