package genefeature

import (
	"regexp"
	"time"

	"github.com/google/uuid"

	"github.com/phenobase/phenobase/internal/platform/search"
)

// GeneFeature is an annotated genomic feature (gene, transcript, exon or
// regulatory region) used to ground free-text queries in known symbols.
type GeneFeature struct {
	ID          uuid.UUID `db:"id" json:"id"`
	Symbol      string    `db:"symbol" json:"symbol"`
	Label       string    `db:"label" json:"label"`
	FeatureType string    `db:"feature_type" json:"feature_type"`
	Chromosome  *string   `db:"chromosome" json:"chromosome,omitempty"`
	StartPos    *int64    `db:"start_pos" json:"start_pos,omitempty"`
	EndPos      *int64    `db:"end_pos" json:"end_pos,omitempty"`
	Description *string   `db:"description" json:"description,omitempty"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`
}

var (
	symbolPattern     = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9-]{0,19}$`)
	chromosomePattern = regexp.MustCompile(`^(chr)?([0-9]{1,2}|[XYM]|MT)$`)
)

var featureTypes = []string{"GENE", "TRANSCRIPT", "EXON", "REGULATORY"}

var featureTypeLabels = map[string]string{
	"GENE":       "Gene",
	"TRANSCRIPT": "Transcript",
	"EXON":       "Exon",
	"REGULATORY": "Regulatory region",
}

func SearchConfig() search.EntityConfig {
	return search.EntityConfig{
		Kind:          "gene_feature",
		Table:         "gene_features",
		SelectColumns: geneFeatureCols,
		Fields: search.FieldSet{
			"gene": {
				Param: "gene", Column: "symbol",
				Pattern: symbolPattern, MaxLen: 20, CaseFold: true,
			},
			"feature_type": {
				Param: "feature_type", Column: "feature_type",
				Enum: featureTypes,
			},
			"chromosome": {
				Param: "chromosome", Column: "chromosome",
				Pattern: chromosomePattern, MaxLen: 5,
			},
		},
		Text: search.TextConfig{
			Columns: []search.WeightedColumn{
				{Column: "symbol", Weight: "A"},
				{Column: "label", Weight: "A"},
				{Column: "description", Weight: "C"},
			},
			IdentifierColumns: []string{"symbol"},
		},
		Facets: []search.FacetDim{
			{Param: "feature_type", Column: "feature_type", Labels: featureTypeLabels},
			{Param: "chromosome", Column: "chromosome"},
		},
	}
}
