// Package endpoint maps logical OSCU operation names to request paths.
package endpoint

import (
	"fmt"
	"net/http"
	"sort"
	"strings"

	"github.com/rezonia/etims-client/internal/model"
)

// Environments
const (
	EnvSandbox    = "sbx"
	EnvProduction = "prod"
)

// Default base URLs per environment
const (
	SandboxBaseURL    = "https://etims-api-sbx.kra.go.ke/etims-api"
	ProductionBaseURL = "https://etims-api.kra.go.ke/etims-api"
)

// Bootstrap is the initialization endpoint that is called before the
// tenant triplet exists
const Bootstrap = "selectInitOsdcInfo"

// Endpoint describes one logical operation
type Endpoint struct {
	Name      string
	Path      string
	Method    string
	Contract  string
	Bootstrap bool
}

func post(name, contract string) Endpoint {
	return Endpoint{Name: name, Path: "/" + name, Method: http.MethodPost, Contract: contract}
}

// Defaults returns the OSCU endpoint catalogue
func Defaults() []Endpoint {
	lookup := "lastReqOnly"

	boot := post(Bootstrap, "selectInitOsdcInfo")
	boot.Bootstrap = true

	return []Endpoint{
		boot,
		post("selectCodeList", lookup),
		post("selectCustomer", "selectCustomer"),
		post("selectNoticeList", lookup),
		post("selectItemClsList", lookup),
		post("selectItemList", lookup),
		post("saveItem", "saveItem"),
		post("saveItemComposition", "saveItemComposition"),
		post("selectBhfList", lookup),
		post("saveBhfCustomer", "saveBhfCustomer"),
		post("saveBhfUser", "saveBhfUser"),
		post("saveBhfInsurance", "saveBhfInsurance"),
		post("selectImportItemList", lookup),
		post("updateImportItem", "importItemUpdate"),
		post("saveTrnsSalesOsdc", "saveTrnsSalesOsdc"),
		post("selectTrnsPurchaseSalesList", lookup),
		post("insertTrnsPurchase", "insertTrnsPurchase"),
		post("selectStockMoveList", lookup),
		post("insertStockIO", "insertStockIO"),
		post("saveStockMaster", "saveStockMaster"),
	}
}

// Table resolves logical names. It is immutable after construction.
type Table struct {
	endpoints map[string]Endpoint
}

// NewTable builds a table from the default catalogue with path overrides
// applied. Overrides for unknown names add new POST endpoints without a
// contract.
func NewTable(overrides map[string]string) (*Table, error) {
	t := &Table{endpoints: make(map[string]Endpoint)}
	for _, e := range Defaults() {
		t.endpoints[e.Name] = e
	}

	for name, path := range overrides {
		if strings.HasPrefix(name, "/") {
			return nil, model.NewConfigurationError(model.ConfigKindEndpoint, name,
				"override key must be an endpoint name, not a path")
		}
		path = strings.TrimSpace(path)
		if path == "" {
			return nil, model.NewConfigurationError(model.ConfigKindEndpoint, name, "override path is empty")
		}
		if !strings.HasPrefix(path, "/") {
			path = "/" + path
		}

		e, ok := t.endpoints[name]
		if !ok {
			e = Endpoint{Name: name, Method: http.MethodPost}
		}
		e.Path = path
		t.endpoints[name] = e
	}
	return t, nil
}

// DefaultTable returns the catalogue without overrides
func DefaultTable() *Table {
	t, _ := NewTable(nil)
	return t
}

// Resolve returns the endpoint for a logical name. Path-looking keys and
// unknown names are configuration errors.
func (t *Table) Resolve(name string) (Endpoint, error) {
	if strings.HasPrefix(name, "/") {
		return Endpoint{}, model.NewConfigurationError(model.ConfigKindEndpoint, name,
			fmt.Sprintf("endpoint key expected, path given [%s]; pass endpoint keys only", name))
	}
	e, ok := t.endpoints[name]
	if !ok {
		return Endpoint{}, model.NewConfigurationError(model.ConfigKindEndpoint, name, "endpoint not configured")
	}
	return e, nil
}

// All returns every endpoint sorted by name
func (t *Table) All() []Endpoint {
	out := make([]Endpoint, 0, len(t.endpoints))
	for _, e := range t.endpoints {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// BaseURL returns the API root for env; override wins when non-empty.
// Unknown environments fall back to production.
func BaseURL(env, override string) string {
	if s := strings.TrimSpace(override); s != "" {
		return strings.TrimRight(s, "/")
	}
	if env == EnvSandbox {
		return SandboxBaseURL
	}
	return ProductionBaseURL
}
