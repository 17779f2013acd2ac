package tui

import (
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/jask/cnpjlookup/internal/lookup"
	"github.com/jask/cnpjlookup/internal/registryid"
	"github.com/jask/cnpjlookup/internal/session"
)

const notInformed = "not informed"

var brl = message.NewPrinter(language.BrazilianPortuguese)

// Render draws the result area for snap: nothing while idle, a progress line
// while loading, the error banner or the record.
func Render(snap session.Snapshot, st Styles) string {
	switch snap.State {
	case session.Loading, session.Validating:
		return st.Hint.Render("Querying...")
	case session.Error:
		return st.Error.Render(snap.ErrKind.Message())
	case session.Success:
		if snap.Record == nil {
			return ""
		}
		return RenderRecord(*snap.Record, st)
	default:
		return ""
	}
}

// RenderRecord lays out every section of rec.
func RenderRecord(rec lookup.Record, st Styles) string {
	var b strings.Builder

	b.WriteString(st.Title.Render(rec.LegalName))
	b.WriteString("\n")
	b.WriteString(st.Subtitle.Render(orDefault(rec.TradeName, "(trade name not informed)")))
	b.WriteString("\n")
	b.WriteString(st.Badge.Render(registryid.Mask(registryid.ID(rec.CNPJ))))
	b.WriteString("\n")

	section(&b, st, "Identification",
		field{"Size", orDefault(rec.Size.Label, notInformed)},
		field{"Share capital", formatBRL(rec.ShareCapital)},
		field{"Fiscal activity (CNAE)", formatCode(rec.CNAE)},
	)
	section(&b, st, "Contact",
		field{"E-mail", orDefaultPtr(rec.Contact.Email, notInformed)},
		field{"Phone 1", orDefault(rec.Contact.Phone1, notInformed)},
		field{"Phone 2", orDefault(rec.Contact.Phone2, notInformed)},
	)
	section(&b, st, "Address",
		field{"", formatStreet(rec.Address)},
		field{"", formatLocality(rec.Address)},
		field{"Postal code", orDefault(formatCEP(rec.Address.PostalCode), notInformed)},
	)

	b.WriteString("\n")
	b.WriteString(st.Section.Render("Partners"))
	b.WriteString("\n")
	partners := rec.Partners()
	if len(partners) == 0 {
		b.WriteString(st.Hint.Render("no partners informed"))
		b.WriteString("\n")
	}
	for _, p := range partners {
		b.WriteString("- ")
		b.WriteString(st.Value.Render(p))
		b.WriteString("\n")
	}

	section(&b, st, "Additional information",
		field{"Country", orDefaultPtr(rec.Country.Name, "Brazil")},
		field{"Country code", orDefaultPtr(rec.Country.Code, notInformed)},
		field{"MEI opt-in", rec.MEI.String()},
		field{"Size description", orDefault(rec.Size.Description, notInformed)},
		field{"Size code", formatCode(rec.Size.Code)},
		field{"Municipality code", formatCode(rec.Address.MunicipalityCode)},
	)
	return strings.TrimRight(b.String(), "\n")
}

type field struct {
	label string
	value string
}

func section(b *strings.Builder, st Styles, title string, fields ...field) {
	b.WriteString("\n")
	b.WriteString(st.Section.Render(title))
	b.WriteString("\n")
	for _, f := range fields {
		if f.label != "" {
			b.WriteString(st.Label.Render(f.label + ": "))
		}
		b.WriteString(st.Value.Render(f.value))
		b.WriteString("\n")
	}
}

func formatStreet(a lookup.Address) string {
	parts := []string{}
	if s := strings.TrimSpace(a.Street); s != "" {
		parts = append(parts, s)
	}
	if n := strings.TrimSpace(a.Number); n != "" {
		parts = append(parts, n)
	}
	if c := strings.TrimSpace(a.Complement); c != "" {
		parts = append(parts, c)
	}
	if len(parts) == 0 {
		return notInformed
	}
	return strings.Join(parts, ", ")
}

func formatLocality(a lookup.Address) string {
	city := strings.TrimSpace(a.Municipality)
	if uf := strings.TrimSpace(a.State); uf != "" {
		city += "/" + uf
	}
	district := strings.TrimSpace(a.District)
	switch {
	case district != "" && city != "":
		return district + " - " + city
	case district != "":
		return district
	case city != "":
		return city
	default:
		return notInformed
	}
}

// formatCEP renders an 8-digit postal code as NNNNN-NNN; anything else is
// returned unchanged.
func formatCEP(cep string) string {
	if len(cep) != 8 {
		return cep
	}
	for i := 0; i < len(cep); i++ {
		if cep[i] < '0' || cep[i] > '9' {
			return cep
		}
	}
	return cep[:5] + "-" + cep[5:]
}

func formatBRL(v *float64) string {
	if v == nil {
		return notInformed
	}
	return brl.Sprintf("R$ %.2f", *v)
}

func formatCode(v *int64) string {
	if v == nil {
		return notInformed
	}
	return strconv.FormatInt(*v, 10)
}

func orDefault(s, fallback string) string {
	if strings.TrimSpace(s) == "" {
		return fallback
	}
	return s
}

func orDefaultPtr(s *string, fallback string) string {
	if s == nil {
		return fallback
	}
	return orDefault(*s, fallback)
}

// statusLine is the one-line summary under the input field.
func statusLine(snap session.Snapshot) string {
	switch snap.State {
	case session.Loading:
		return fmt.Sprintf("querying %s", registryid.Mask(snap.Canonical))
	case session.Idle:
		if n := len(snap.Canonical); n > 0 && n < registryid.Length {
			return fmt.Sprintf("%d of %d digits", n, registryid.Length)
		}
	}
	return ""
}
