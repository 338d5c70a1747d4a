package usecase

import (
	"strings"

	"github.com/productmatch/backend/internal/domain"
	"github.com/sirupsen/logrus"
)

// Transform is a side-effect-free per-field string transform applied before query assembly
type Transform func(value string) string

// transforms is the registry of named pre-processing transforms
var transforms = map[domain.TransformName]Transform{
	domain.TransformString: func(v string) string { return v },
	domain.TransformQuote:  func(v string) string { return `"` + v + `"` },
	domain.TransformTrim:   strings.TrimSpace,
}

// LookupTransform returns the transform registered under name
func LookupTransform(name domain.TransformName) (Transform, bool) {
	t, ok := transforms[name]
	return t, ok
}

// FieldValue is a record value after prefix parsing and pre-processing
type FieldValue struct {
	Field domain.Field
	// Name is the output field name from the field mapping
	Name string
	// Bare is the raw value with any field prefix removed
	Bare string
	// Value is Bare after the field's transform
	Value string
	// Prefixed is set when the raw value arrived as "<field>:<value>"
	Prefixed bool
}

// QueryPreprocessor maps record fields to output names and pre-processes their values
type QueryPreprocessor struct {
	mapping map[domain.Field]string
	rules   map[domain.Field]Transform
	logger  logrus.FieldLogger
}

// NewQueryPreprocessor creates a preprocessor from an already validated mapping and rule set
func NewQueryPreprocessor(
	mapping map[domain.Field]string,
	rules map[domain.Field]Transform,
	logger logrus.FieldLogger,
) *QueryPreprocessor {
	return &QueryPreprocessor{
		mapping: mapping,
		rules:   rules,
		logger:  logger,
	}
}

// Preprocess returns one FieldValue per mapped field of the record
func (p *QueryPreprocessor) Preprocess(record domain.Record) map[domain.Field]FieldValue {
	values := make(map[domain.Field]FieldValue, len(p.mapping))

	for _, field := range domain.Fields {
		name, ok := p.mapping[field]
		if !ok {
			continue
		}

		// Step 1: Look up the raw value (absent fields are "")
		raw := record.Value(field)

		// Step 2: Split off a field prefix left by upstream producers
		bare, prefixed := parseFieldPrefix(raw, name, string(field))

		// Step 3: Apply the registered transform, if any
		value := bare
		if transform, ok := p.rules[field]; ok {
			value = transform(bare)
		}

		if prefixed {
			p.logger.WithFields(logrus.Fields{
				"field": field,
				"raw":   raw,
			}).Debug("stripped field prefix")
		}

		values[field] = FieldValue{
			Field:    field,
			Name:     name,
			Bare:     bare,
			Value:    value,
			Prefixed: prefixed,
		}
	}

	return values
}

// parseFieldPrefix removes a leading "<name>:" from raw, once, trying each name in order.
// Occurrences anywhere but the start of the value are left alone.
func parseFieldPrefix(raw string, names ...string) (string, bool) {
	for _, name := range names {
		if name == "" {
			continue
		}
		if bare, ok := strings.CutPrefix(raw, name+":"); ok {
			return bare, true
		}
	}
	return raw, false
}
