package usecase

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/productmatch/backend/internal/domain"
)

// Parser transforms a single result field value
type Parser func(value interface{}) interface{}

// parsers is the registry of named custom field parsers
var parsers = map[string]Parser{
	"first": parseFirst,
	"join":  parseJoin,
	"lower": parseLower,
}

// LookupParser returns the parser registered under name
func LookupParser(name string) (Parser, bool) {
	p, ok := parsers[name]
	return p, ok
}

// ResultShaper applies the output shaping options of the matching config to search results
type ResultShaper struct {
	key           string
	unwanted      []string
	flatFields    []string
	forcedFields  []string
	// customParsers is keyed by lowercased field name
	customParsers map[string]Parser
}

// NewResultShaper creates a shaper from a validated config. Unknown parser names are skipped.
// Custom parser fields match result fields case-insensitively, since config files lowercase map keys.
func NewResultShaper(cfg domain.QueryConfig) *ResultShaper {
	custom := make(map[string]Parser, len(cfg.CustomParsers))
	for field, name := range cfg.CustomParsers {
		if p, ok := LookupParser(name); ok {
			custom[strings.ToLower(field)] = p
		}
	}

	return &ResultShaper{
		key:           cfg.MappingKey,
		unwanted:      append([]string{}, cfg.UnwantedData...),
		flatFields:    append([]string{}, cfg.FlatFields...),
		forcedFields:  append([]string{}, cfg.ForcedFields...),
		customParsers: custom,
	}
}

// Shape returns a shaped copy of result; the input is not modified.
// Order: drop unwanted fields, flatten nested fields, run custom parsers, add forced fields.
func (s *ResultShaper) Shape(result domain.Result) domain.Result {
	shaped := make(domain.Result, len(result))
	for k, v := range result {
		shaped[k] = v
	}

	for _, field := range s.unwanted {
		delete(shaped, field)
	}

	for _, field := range s.flatFields {
		nested, ok := asObject(shaped[field])
		if !ok {
			continue
		}
		for sub, v := range nested {
			shaped[field+"."+sub] = v
		}
		delete(shaped, field)
	}

	if len(s.customParsers) > 0 {
		for field, v := range shaped {
			if parse, ok := s.customParsers[strings.ToLower(field)]; ok {
				shaped[field] = parse(v)
			}
		}
	}

	for _, field := range s.forcedFields {
		if _, ok := shaped[field]; !ok {
			shaped[field] = nil
		}
	}

	return shaped
}

// Key returns the dedup key of result, taking the first element when the key field is a list
func (s *ResultShaper) Key(result domain.Result) (string, bool) {
	v, ok := result[s.key]
	if !ok || v == nil {
		return "", false
	}

	switch val := v.(type) {
	case []interface{}:
		if len(val) == 0 {
			return "", false
		}
		return scalarString(val[0])
	case []string:
		if len(val) == 0 {
			return "", false
		}
		return val[0], true
	default:
		return scalarString(val)
	}
}

// ShapeAll shapes every result and tags it with its key
func (s *ResultShaper) ShapeAll(results []domain.Result) []domain.ShapedResult {
	out := make([]domain.ShapedResult, 0, len(results))
	for _, r := range results {
		key, hasKey := s.Key(r)
		out = append(out, domain.ShapedResult{
			Key:    key,
			HasKey: hasKey,
			Result: s.Shape(r),
		})
	}
	return out
}

func asObject(v interface{}) (map[string]interface{}, bool) {
	switch obj := v.(type) {
	case map[string]interface{}:
		return obj, true
	case domain.Result:
		return obj, true
	}
	return nil, false
}

func scalarString(v interface{}) (string, bool) {
	switch val := v.(type) {
	case nil:
		return "", false
	case string:
		return val, val != ""
	case float64:
		// JSON numbers decode as float64; GTINs must not come back in exponent form
		return strconv.FormatFloat(val, 'f', -1, 64), true
	default:
		return fmt.Sprint(val), true
	}
}

func parseFirst(v interface{}) interface{} {
	switch list := v.(type) {
	case []interface{}:
		if len(list) == 0 {
			return nil
		}
		return list[0]
	case []string:
		if len(list) == 0 {
			return nil
		}
		return list[0]
	}
	return v
}

func parseJoin(v interface{}) interface{} {
	switch list := v.(type) {
	case []interface{}:
		parts := make([]string, 0, len(list))
		for _, item := range list {
			s, _ := scalarString(item)
			parts = append(parts, s)
		}
		return strings.Join(parts, ",")
	case []string:
		return strings.Join(list, ",")
	}
	return v
}

func parseLower(v interface{}) interface{} {
	if s, ok := v.(string); ok {
		return strings.ToLower(s)
	}
	return v
}
