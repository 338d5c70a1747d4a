package domain

// TransformName names a registered per-field pre-processing transform
type TransformName string

const (
	// TransformString keeps the value as-is
	TransformString TransformName = "string"
	// TransformQuote wraps the value in double quotes for exact matching
	TransformQuote TransformName = "quote"
	// TransformTrim strips surrounding whitespace
	TransformTrim TransformName = "trim"
)

// Strategy names the function that assembles pre-processed fields into one query
type Strategy string

const (
	// StrategyBrandGTIN matches (brand OR manufacturer) AND manufacturerNumber, falling back to GTIN
	StrategyBrandGTIN Strategy = "brand_gtin"
	// StrategyGTINOnly matches on GTIN alone
	StrategyGTINOnly Strategy = "gtin_only"
	// StrategyClauses joins one clause per populated field, with AND when ForcedAnd is set and OR otherwise
	StrategyClauses Strategy = "clauses"
)

// Default values of the product matching configuration
const (
	DefaultDataType   = "products"
	DefaultNumRecords = 5
	DefaultFormat     = "JSON"
)

// QueryConfig holds the declarative product matching configuration
type QueryConfig struct {
	DataType string `json:"dataType"`
	// Token is handed to the caller untouched and never rendered into queries
	Token     string `json:"-"`
	ForcedAnd bool   `json:"forcedAnd"`

	FieldsMapping       map[Field]string        `json:"fieldsMapping"`
	FieldsPreProcessing map[Field]TransformName `json:"fieldsPreProcessing"`
	Strategy            Strategy                `json:"strategy"`
	NumRecords          int                     `json:"numRecords"`

	// MappingKey is the result field used as unique key downstream
	MappingKey string `json:"mappingKey"`

	UnwantedData  []string          `json:"unwantedData"`
	FlatFields    []string          `json:"flatFields"`
	ForcedFields  []string          `json:"forcedFields"`
	CustomParsers map[string]string `json:"customParsers"`
}

// DefaultQueryConfig returns the brand/GTIN product matching configuration
func DefaultQueryConfig() QueryConfig {
	return QueryConfig{
		DataType:  DefaultDataType,
		ForcedAnd: false,
		FieldsMapping: map[Field]string{
			FieldGTINs:              string(FieldGTINs),
			FieldBrand:              string(FieldBrand),
			FieldManufacturerNumber: string(FieldManufacturerNumber),
			FieldManufacturer:       string(FieldManufacturer),
		},
		FieldsPreProcessing: map[Field]TransformName{
			FieldGTINs:              TransformString,
			FieldBrand:              TransformString,
			FieldManufacturer:       TransformQuote,
			FieldManufacturerNumber: TransformQuote,
		},
		Strategy:      StrategyBrandGTIN,
		NumRecords:    DefaultNumRecords,
		MappingKey:    string(FieldGTINs),
		UnwantedData:  []string{},
		FlatFields:    []string{},
		ForcedFields:  []string{},
		CustomParsers: map[string]string{},
	}
}

// SearchRequest describes the search call an external HTTP client should perform
type SearchRequest struct {
	DataType   string `json:"dataType"`
	Query      string `json:"query"`
	NumRecords int    `json:"num_records"`
	Format     string `json:"format"`
	KeyField   string `json:"keyField"`
	KeyValue   string `json:"keyValue,omitempty"`
}
