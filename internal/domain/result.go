package domain

// Result is a single record returned by the product search API
type Result map[string]interface{}

// ShapedResult is a result after output shaping, tagged with its dedup key
type ShapedResult struct {
	Key    string `json:"key,omitempty"`
	HasKey bool   `json:"hasKey"`
	Result Result `json:"result"`
}
