package usecase

import (
	"fmt"
	"strings"

	"github.com/productmatch/backend/internal/domain"
	"github.com/productmatch/backend/internal/logger"
	"github.com/sirupsen/logrus"
)

// assembler combines pre-processed fields into the final query string
type assembler func(fields map[domain.Field]FieldValue, forcedAnd bool) string

type strategyDef struct {
	assemble assembler
	// requires lists the fields that must be mapped for the strategy to render
	requires []domain.Field
}

var strategies = map[domain.Strategy]strategyDef{
	domain.StrategyBrandGTIN: {
		assemble: assembleBrandGTIN,
		requires: domain.Fields,
	},
	domain.StrategyGTINOnly: {
		assemble: assembleGTINOnly,
		requires: []domain.Field{domain.FieldGTINs},
	},
	domain.StrategyClauses: {
		assemble: assembleClauses,
	},
}

// QueryBuilder renders product records into search API query strings.
// It is immutable once built and safe for concurrent use.
type QueryBuilder struct {
	config       domain.QueryConfig
	preprocessor *QueryPreprocessor
	assemble     assembler
	logger       logrus.FieldLogger
}

// NewQueryBuilder validates cfg and creates a builder from a private copy of it.
// A nil logger discards output.
func NewQueryBuilder(cfg domain.QueryConfig, log logrus.FieldLogger) (*QueryBuilder, error) {
	if log == nil {
		log = logger.Discard()
	}

	if err := validateQueryConfig(cfg); err != nil {
		return nil, err
	}

	cfg = cloneQueryConfig(cfg)

	rules := make(map[domain.Field]Transform, len(cfg.FieldsPreProcessing))
	for field, name := range cfg.FieldsPreProcessing {
		rules[field], _ = LookupTransform(name)
	}

	log = log.WithField("component", "querybuilder")

	return &QueryBuilder{
		config:       cfg,
		preprocessor: NewQueryPreprocessor(cfg.FieldsMapping, rules, log),
		assemble:     strategies[cfg.Strategy].assemble,
		logger:       log,
	}, nil
}

// BuildQuery builds the query for a single record.
// It fails only when cfg is malformed.
func BuildQuery(record domain.Record, cfg domain.QueryConfig) (string, error) {
	builder, err := NewQueryBuilder(cfg, nil)
	if err != nil {
		return "", err
	}
	return builder.Build(record), nil
}

// Build renders the query string for record
func (b *QueryBuilder) Build(record domain.Record) string {
	fields := b.preprocessor.Preprocess(record)
	query := b.assemble(fields, b.config.ForcedAnd)

	b.logger.WithFields(logrus.Fields{
		"strategy": b.config.Strategy,
		"query":    query,
	}).Debug("built query")

	return query
}

// KeyValue returns the record value backing the configured mapping key, if the key names a record field
func (b *QueryBuilder) KeyValue(record domain.Record) string {
	for _, field := range domain.Fields {
		name, mapped := b.config.FieldsMapping[field]
		if string(field) != b.config.MappingKey && (!mapped || name != b.config.MappingKey) {
			continue
		}
		bare, _ := parseFieldPrefix(record.Value(field), name, string(field))
		return bare
	}
	return ""
}

// Config returns a copy of the builder's configuration
func (b *QueryBuilder) Config() domain.QueryConfig {
	return cloneQueryConfig(b.config)
}

// assembleBrandGTIN renders
// ((brand:"<brand>" OR manufacturer:<manufacturer>) AND manufacturerNumber:<manufacturerNumber>) OR gtins:"<gtins>"
func assembleBrandGTIN(fields map[domain.Field]FieldValue, _ bool) string {
	brand := fields[domain.FieldBrand]
	manufacturer := fields[domain.FieldManufacturer]
	number := fields[domain.FieldManufacturerNumber]
	gtins := fields[domain.FieldGTINs]

	return fmt.Sprintf(`((%s:"%s" OR %s:%s) AND %s:%s) OR %s:"%s"`,
		brand.Name, brand.Value,
		manufacturer.Name, manufacturer.Value,
		number.Name, number.Value,
		gtins.Name, gtins.Value,
	)
}

func assembleGTINOnly(fields map[domain.Field]FieldValue, _ bool) string {
	gtins := fields[domain.FieldGTINs]
	return fmt.Sprintf(`%s:"%s"`, gtins.Name, gtins.Value)
}

// assembleClauses joins "<name>:<value>" for every populated field in canonical order
func assembleClauses(fields map[domain.Field]FieldValue, forcedAnd bool) string {
	var clauses []string
	for _, field := range domain.Fields {
		fv, ok := fields[field]
		if !ok || fv.Bare == "" {
			continue
		}
		clauses = append(clauses, fv.Name+":"+fv.Value)
	}

	op := " OR "
	if forcedAnd {
		op = " AND "
	}
	return strings.Join(clauses, op)
}

// validateQueryConfig reports the first problem found in cfg, wrapped in ErrInvalidConfig
func validateQueryConfig(cfg domain.QueryConfig) error {
	if cfg.DataType == "" {
		return fmt.Errorf("%w: data type is required", domain.ErrInvalidConfig)
	}

	if len(cfg.FieldsMapping) == 0 {
		return fmt.Errorf("%w: fields mapping is empty", domain.ErrInvalidConfig)
	}
	for field, name := range cfg.FieldsMapping {
		if !field.IsKnown() {
			return fmt.Errorf("%w: unknown field %q in fields mapping", domain.ErrInvalidConfig, field)
		}
		if name == "" || strings.ContainsAny(name, ": \t\"") {
			return fmt.Errorf("%w: invalid output name %q for field %q", domain.ErrInvalidConfig, name, field)
		}
	}

	for field, name := range cfg.FieldsPreProcessing {
		if !field.IsKnown() {
			return fmt.Errorf("%w: unknown field %q in pre-processing rules", domain.ErrInvalidConfig, field)
		}
		if _, ok := LookupTransform(name); !ok {
			return fmt.Errorf("%w: unknown transform %q for field %q", domain.ErrInvalidConfig, name, field)
		}
	}

	def, ok := strategies[cfg.Strategy]
	if !ok {
		return fmt.Errorf("%w: unknown strategy %q", domain.ErrInvalidConfig, cfg.Strategy)
	}
	for _, field := range def.requires {
		if _, ok := cfg.FieldsMapping[field]; !ok {
			return fmt.Errorf("%w: strategy %q requires field %q to be mapped", domain.ErrInvalidConfig, cfg.Strategy, field)
		}
	}

	if cfg.NumRecords <= 0 {
		return fmt.Errorf("%w: numRecords must be positive, got %d", domain.ErrInvalidConfig, cfg.NumRecords)
	}

	if cfg.MappingKey == "" {
		return fmt.Errorf("%w: mapping key is required", domain.ErrInvalidConfig)
	}

	for field, name := range cfg.CustomParsers {
		if _, ok := LookupParser(name); !ok {
			return fmt.Errorf("%w: unknown parser %q for field %q", domain.ErrInvalidConfig, name, field)
		}
	}

	return nil
}

func cloneQueryConfig(cfg domain.QueryConfig) domain.QueryConfig {
	out := cfg

	out.FieldsMapping = make(map[domain.Field]string, len(cfg.FieldsMapping))
	for k, v := range cfg.FieldsMapping {
		out.FieldsMapping[k] = v
	}

	out.FieldsPreProcessing = make(map[domain.Field]domain.TransformName, len(cfg.FieldsPreProcessing))
	for k, v := range cfg.FieldsPreProcessing {
		out.FieldsPreProcessing[k] = v
	}

	out.CustomParsers = make(map[string]string, len(cfg.CustomParsers))
	for k, v := range cfg.CustomParsers {
		out.CustomParsers[k] = v
	}

	out.UnwantedData = append([]string{}, cfg.UnwantedData...)
	out.FlatFields = append([]string{}, cfg.FlatFields...)
	out.ForcedFields = append([]string{}, cfg.ForcedFields...)

	return out
}
