package orrery

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"

	kitlog "github.com/go-kit/kit/log"
	"github.com/spf13/cast"
	"github.com/spf13/viper"
)

//go:embed data/elements.toml
var defaultElements []byte

// Catalog maps a body to its orbital elements. A missing key means the body uses
// the circular fallback, it is never an error.
type Catalog map[BodyKey]OrbitalElements

// Lookup returns the elements of the provided body, if known.
func (c Catalog) Lookup(key BodyKey) (OrbitalElements, bool) {
	el, ok := c[key]
	return el, ok
}

// Keys returns the sorted keys of the catalog.
func (c Catalog) Keys() []BodyKey {
	keys := make([]BodyKey, 0, len(c))
	for k := range c {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys
}

// DefaultCatalog returns the embedded catalog (JPL approximate elements, J2000).
func DefaultCatalog(logger kitlog.Logger) Catalog {
	return LoadCatalog(bytes.NewReader(defaultElements), logger)
}

// LoadCatalogFile loads the catalog from a TOML file. Reading errors are logged
// and an empty catalog is returned.
func LoadCatalogFile(path string, logger kitlog.Logger) Catalog {
	f, err := os.Open(path)
	if err != nil {
		logCatalogError(logger, &CatalogParseError{Err: err})
		return Catalog{}
	}
	defer f.Close()
	return LoadCatalog(f, logger)
}

// LoadCatalog parses a TOML keyed record set, one table per lowercase body name:
//
//	[earth]
//	a = 1.00000261
//	e = 0.01671123
//	...
//	[earth.rates]
//	l = 35999.37306329
//
// The fields a and e are required, i, l, lp and node default to zero as do all rates.
// The optional epoch is a Julian date, J2000 when absent.
// Malformed entries are logged and skipped, a malformed source yields an empty catalog.
func LoadCatalog(r io.Reader, logger kitlog.Logger) Catalog {
	if logger == nil {
		logger = kitlog.NewNopLogger()
	}
	cat := Catalog{}
	v := viper.New()
	v.SetConfigType("toml")
	if err := v.ReadConfig(r); err != nil {
		logCatalogError(logger, &CatalogParseError{Err: err})
		return cat
	}
	for name, raw := range v.AllSettings() {
		key := KeyOf(name)
		el, err := parseElements(raw)
		if err != nil {
			logCatalogError(logger, &CatalogParseError{Key: key, Err: err})
			continue
		}
		cat[key] = el
	}
	logger.Log("level", "info", "subsys", "catalog", "entries", len(cat))
	return cat
}

func logCatalogError(logger kitlog.Logger, err error) {
	if logger == nil {
		return
	}
	logger.Log("level", "warning", "subsys", "catalog", "err", err)
}

func parseElements(raw interface{}) (el OrbitalElements, err error) {
	entry, ok := raw.(map[string]interface{})
	if !ok {
		return el, errors.New("not a table")
	}
	for _, req := range []string{"a", "e"} {
		if _, found := entry[req]; !found {
			return el, fmt.Errorf("missing field '%s'", req)
		}
	}
	fields := map[string]*float64{"a": &el.A, "e": &el.E, "i": &el.I, "l": &el.L, "lp": &el.LP, "node": &el.N, "epoch": &el.Epoch}
	if err = readFields(entry, fields); err != nil {
		return
	}
	if rawRates, found := entry["rates"]; found {
		rates, ok := rawRates.(map[string]interface{})
		if !ok {
			return el, errors.New("rates is not a table")
		}
		fields = map[string]*float64{"a": &el.DA, "e": &el.DE, "i": &el.DI, "l": &el.DL, "lp": &el.DLP, "node": &el.DN}
		if err = readFields(rates, fields); err != nil {
			return el, fmt.Errorf("rates: %w", err)
		}
	}
	return el, el.Validate()
}

func readFields(entry map[string]interface{}, fields map[string]*float64) error {
	for name, dst := range fields {
		val, found := entry[name]
		if !found {
			continue
		}
		fl, err := cast.ToFloat64E(val)
		if err != nil {
			return fmt.Errorf("field '%s': %w", name, err)
		}
		*dst = fl
	}
	return nil
}
