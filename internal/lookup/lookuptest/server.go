// Package lookuptest provides an in-process fake of the registry service.
package lookuptest

import (
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
)

// ACMEJSON is a complete record as the public mirror returns it.
const ACMEJSON = `{
  "cnpj": "11222333000181",
  "pais": null,
  "email": "contato@acme.com.br",
  "porte": "DEMAIS",
  "bairro": "CENTRO",
  "numero": "100",
  "ddd_fax": "",
  "municipio": "SAO PAULO",
  "logradouro": "RUA DAS FLORES",
  "cnae_fiscal": 6201501,
  "codigo_pais": null,
  "complemento": "SALA 2",
  "codigo_porte": 5,
  "razao_social": "ACME LTDA",
  "nome_fantasia": "ACME",
  "capital_social": 150000.5,
  "ddd_telefone_1": "1133334444",
  "ddd_telefone_2": "",
  "opcao_pelo_mei": false,
  "descricao_porte": "DEMAIS",
  "codigo_municipio": 7107,
  "uf": "SP",
  "cep": "01001000",
  "qsa": [{"nome_socio": "JOAO DA SILVA"}, {"nome_socio": "MARIA SOUZA"}]
}`

type response struct {
	status int
	body   string
	delay  time.Duration
}

// Server answers GET /cnpj/{id} and GET /lookup/{id} from canned responses.
// Unknown IDs get a 404.
type Server struct {
	*httptest.Server

	mu        sync.Mutex
	responses map[string]response
	calls     map[string]int
	headers   []http.Header
}

// New starts a server that is closed when the test ends.
func New(t testing.TB) *Server {
	t.Helper()
	s := &Server{
		responses: make(map[string]response),
		calls:     make(map[string]int),
	}
	r := chi.NewRouter()
	r.Get("/cnpj/{id}", s.serve)
	r.Get("/lookup/{id}", s.serve)
	s.Server = httptest.NewServer(r)
	t.Cleanup(s.Close)
	return s
}

// Respond registers the status and raw body returned for id.
func (s *Server) Respond(id string, status int, body string) {
	s.RespondAfter(id, status, body, 0)
}

// RespondAfter is Respond with a delay before the response is written.
func (s *Server) RespondAfter(id string, status int, body string, delay time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.responses[id] = response{status: status, body: body, delay: delay}
}

// Calls reports how many requests were made for id.
func (s *Server) Calls(id string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls[id]
}

// LastHeader returns the headers of the most recent request.
func (s *Server) LastHeader() http.Header {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.headers) == 0 {
		return nil
	}
	return s.headers[len(s.headers)-1]
}

func (s *Server) serve(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	s.mu.Lock()
	s.calls[id]++
	s.headers = append(s.headers, r.Header.Clone())
	resp, ok := s.responses[id]
	s.mu.Unlock()

	if !ok {
		http.Error(w, `{"message":"not found"}`, http.StatusNotFound)
		return
	}
	if resp.delay > 0 {
		select {
		case <-time.After(resp.delay):
		case <-r.Context().Done():
			return
		}
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(resp.status)
	_, _ = w.Write([]byte(resp.body))
}
