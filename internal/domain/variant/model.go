package variant

import (
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/phenobase/phenobase/internal/platform/search"
)

// Variant is a curated genetic variant observed in the catalog. HGVS
// notation is stored as provided by the curation pipeline; this service does
// not validate it.
type Variant struct {
	ID          uuid.UUID `db:"id" json:"id"`
	GeneSymbol  string    `db:"gene_symbol" json:"gene_symbol"`
	HGVSc       *string   `db:"hgvs_c" json:"hgvs_c,omitempty"`
	HGVSp       *string   `db:"hgvs_p" json:"hgvs_p,omitempty"`
	Zygosity    *string   `db:"zygosity" json:"zygosity,omitempty"`
	VariantType *string   `db:"variant_type" json:"variant_type,omitempty"`
	Description *string   `db:"description" json:"description,omitempty"`
	PMID        *string   `db:"pmid" json:"pmid,omitempty"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`
}

// Label is the display string used for cross-entity search results.
func (v *Variant) Label() string {
	parts := []string{v.GeneSymbol}
	if v.HGVSc != nil && *v.HGVSc != "" {
		parts = append(parts, *v.HGVSc)
	} else if v.HGVSp != nil && *v.HGVSp != "" {
		parts = append(parts, *v.HGVSp)
	}
	return strings.Join(parts, " ")
}

var (
	genePattern = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9-]{0,19}$`)
	pmidPattern = regexp.MustCompile(`^[0-9]{1,8}$`)
)

var zygosityLabels = map[string]string{
	"HETEROZYGOUS": "Heterozygous",
	"HOMOZYGOUS":   "Homozygous",
	"HEMIZYGOUS":   "Hemizygous",
	"MOSAIC":       "Mosaic",
}

var variantTypeLabels = map[string]string{
	"SNV":         "Single nucleotide variant",
	"DELETION":    "Deletion",
	"DUPLICATION": "Duplication",
	"INSERTION":   "Insertion",
	"INDEL":       "Indel",
	"CNV":         "Copy number variant",
}

// SearchConfig declares how variants are searched: the filter allow-list,
// text ranking over gene symbol and description, exact matching for HGVS
// notation queries, and the facet dimensions reported alongside results.
func SearchConfig() search.EntityConfig {
	return search.EntityConfig{
		Kind:          "variant",
		Table:         "variants",
		SelectColumns: variantCols,
		Fields: search.FieldSet{
			"gene": {
				Param: "gene", Column: "gene_symbol",
				Pattern: genePattern, MaxLen: 20, CaseFold: true,
			},
			"zygosity": {
				Param: "zygosity", Column: "zygosity",
				Enum: []string{"HETEROZYGOUS", "HOMOZYGOUS", "HEMIZYGOUS", "MOSAIC"},
			},
			"variant_type": {
				Param: "variant_type", Column: "variant_type",
				Enum: []string{"SNV", "DELETION", "DUPLICATION", "INSERTION", "INDEL", "CNV"},
			},
			"pmid": {
				Param: "pmid", Column: "pmid",
				Pattern: pmidPattern, MaxLen: 8,
			},
		},
		Text: search.TextConfig{
			Columns: []search.WeightedColumn{
				{Column: "gene_symbol", Weight: "A"},
				{Column: "description", Weight: "C"},
			},
			IdentifierColumns: []string{"gene_symbol"},
			NotationColumns:   []string{"hgvs_c", "hgvs_p"},
		},
		Facets: []search.FacetDim{
			{Param: "gene", Column: "gene_symbol"},
			{Param: "zygosity", Column: "zygosity", Labels: zygosityLabels},
			{Param: "variant_type", Column: "variant_type", Labels: variantTypeLabels},
		},
	}
}
