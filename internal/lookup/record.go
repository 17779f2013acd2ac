package lookup

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
)

// TriState is a yes/no flag that may also be absent from the source.
type TriState uint8

const (
	Unknown TriState = iota
	Yes
	No
)

func (t TriState) String() string {
	switch t {
	case Yes:
		return "Yes"
	case No:
		return "No"
	default:
		return "Unknown"
	}
}

// UnmarshalJSON accepts true/false/null and the string forms some registry
// mirrors emit ("true", "false", "S", "N", "").
func (t *TriState) UnmarshalJSON(b []byte) error {
	raw := strings.TrimSpace(string(b))
	if raw == "null" {
		*t = Unknown
		return nil
	}
	if unq, err := unquote(raw); err == nil {
		raw = unq
	}
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "true", "s", "sim", "y", "yes":
		*t = Yes
	case "false", "n", "nao", "não", "no":
		*t = No
	case "":
		*t = Unknown
	default:
		return fmt.Errorf("tri-state: unexpected value %s", string(b))
	}
	return nil
}

func unquote(raw string) (string, error) {
	var s string
	if err := json.Unmarshal([]byte(raw), &s); err != nil {
		return "", err
	}
	return s, nil
}

// Size is the company size classification.
type Size struct {
	Code        *int64
	Label       string
	Description string
}

// Address is the registered address of a company.
type Address struct {
	Street           string
	Number           string
	Complement       string
	District         string
	Municipality     string
	MunicipalityCode *int64
	State            string
	PostalCode       string
}

// Contact holds the contact fields published by the registry.
type Contact struct {
	Email  *string
	Phone1 string
	Phone2 string
}

// Country holds the country fields; both are null for domestic companies.
type Country struct {
	Name *string
	Code *string
}

// Record is one registry entry. Build it with Decode; the zero value is an
// empty record.
type Record struct {
	CNPJ         string
	LegalName    string
	TradeName    string
	Size         Size
	CNAE         *int64
	ShareCapital *float64
	Address      Address
	Contact      Contact
	Country      Country
	MEI          TriState
	partners     []string
}

// Partners returns a copy of the partner names in registry order.
func (r Record) Partners() []string {
	out := make([]string, len(r.partners))
	copy(out, r.partners)
	return out
}

// WithPartners returns a copy of r carrying names as its partner list.
func (r Record) WithPartners(names ...string) Record {
	r.partners = append([]string(nil), names...)
	return r
}

// wireRecord mirrors the service JSON.
type wireRecord struct {
	CNPJ            string   `json:"cnpj"`
	RazaoSocial     string   `json:"razao_social"`
	NomeFantasia    string   `json:"nome_fantasia"`
	CodigoPorte     *int64   `json:"codigo_porte"`
	Porte           string   `json:"porte"`
	DescricaoPorte  string   `json:"descricao_porte"`
	CNAEFiscal      *int64   `json:"cnae_fiscal"`
	CapitalSocial   *float64 `json:"capital_social"`
	Logradouro      string   `json:"logradouro"`
	Numero          string   `json:"numero"`
	Complemento     string   `json:"complemento"`
	Bairro          string   `json:"bairro"`
	Municipio       string   `json:"municipio"`
	CodigoMunicipio *int64   `json:"codigo_municipio"`
	UF              string   `json:"uf"`
	CEP             string   `json:"cep"`
	Email           *string  `json:"email"`
	DDDTelefone1    string   `json:"ddd_telefone_1"`
	DDDTelefone2    string   `json:"ddd_telefone_2"`
	Pais            *string  `json:"pais"`
	CodigoPais      *string  `json:"codigo_pais"`
	OpcaoPeloMEI    TriState `json:"opcao_pelo_mei"`
	QSA             []struct {
		NomeSocio string `json:"nome_socio"`
	} `json:"qsa"`
}

// Decode reads one JSON record from r.
func Decode(r io.Reader) (Record, error) {
	var w wireRecord
	if err := json.NewDecoder(r).Decode(&w); err != nil {
		return Record{}, fmt.Errorf("decode record: %w", err)
	}
	rec := Record{
		CNPJ:         w.CNPJ,
		LegalName:    w.RazaoSocial,
		TradeName:    w.NomeFantasia,
		Size:         Size{Code: w.CodigoPorte, Label: w.Porte, Description: w.DescricaoPorte},
		CNAE:         w.CNAEFiscal,
		ShareCapital: w.CapitalSocial,
		Address: Address{
			Street:           w.Logradouro,
			Number:           w.Numero,
			Complement:       w.Complemento,
			District:         w.Bairro,
			Municipality:     w.Municipio,
			MunicipalityCode: w.CodigoMunicipio,
			State:            w.UF,
			PostalCode:       w.CEP,
		},
		Contact: Contact{Email: blankToNil(w.Email), Phone1: w.DDDTelefone1, Phone2: w.DDDTelefone2},
		Country: Country{Name: blankToNil(w.Pais), Code: blankToNil(w.CodigoPais)},
		MEI:     w.OpcaoPeloMEI,
	}
	for _, p := range w.QSA {
		if name := strings.TrimSpace(p.NomeSocio); name != "" {
			rec.partners = append(rec.partners, name)
		}
	}
	return rec, nil
}

func blankToNil(s *string) *string {
	if s == nil || strings.TrimSpace(*s) == "" {
		return nil
	}
	return s
}
