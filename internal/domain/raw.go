package domain

// Source identifies which upstream shape a RawProduct was decoded from
type Source string

const (
	SourceCSV     Source = "csv"
	SourceGraphQL Source = "graphql"
)

// RawProduct is the shape-agnostic intermediate produced by a decoder.
// Downstream components never branch on the upstream shape again, except
// through Source for the few rules that differ by origin.
type RawProduct struct {
	Source      Source
	Handle      string
	Title       string
	Vendor      string
	Type        string
	Description string // HTML for CSV, plain text for GraphQL
	BodyHTML    string
	Status      string
	Tags        []string
	Published   bool
	Variants    []RawVariant
	Images      []RawImage
	Metafields  []RawMetafield
}

// RawVariant is one undecoded variant row or edge
type RawVariant struct {
	SKU                string
	Option1Name        string
	Option1Value       string
	Option2Name        string
	Option2Value       string
	PriceText          string
	CompareAtPriceText string
	CostPerItemText    string
	InventoryQty       int
	Weight             float64
	WeightUnit         string
	Barcode            string
	Taxable            bool
	RequiresShipping   bool
	Available          bool
}

// RawImage is an image reference before deduplication
type RawImage struct {
	Src      string
	Position int
	Alt      string
}

// RawMetafield is a namespaced key/value attribute attached to an upstream product
type RawMetafield struct {
	Namespace string
	Key       string
	Value     string
}
