package phenopacket

import (
	"regexp"
	"time"

	"github.com/google/uuid"

	"github.com/phenobase/phenobase/internal/platform/search"
)

// Phenopacket is one catalogued clinical record: a subject, their reported
// sex, the gene implicated for them (when solved), and the HPO phenotype
// terms observed. The full packet document lives with the curation pipeline;
// this service stores the searchable projection.
type Phenopacket struct {
	ID         uuid.UUID `db:"id" json:"id"`
	PacketID   string    `db:"packet_id" json:"packet_id"`
	SubjectID  string    `db:"subject_id" json:"subject_id"`
	Sex        *string   `db:"sex" json:"sex,omitempty"`
	GeneSymbol *string   `db:"gene_symbol" json:"gene_symbol,omitempty"`
	HPOTerms   []string  `db:"hpo_terms" json:"hpo_terms"`
	Summary    *string   `db:"summary" json:"summary,omitempty"`
	PMID       *string   `db:"pmid" json:"pmid,omitempty"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
	UpdatedAt  time.Time `db:"updated_at" json:"updated_at"`
}

var (
	genePattern    = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9-]{0,19}$`)
	pmidPattern    = regexp.MustCompile(`^[0-9]{1,8}$`)
	hpoPattern     = regexp.MustCompile(`^HP:[0-9]{7}$`)
	subjectPattern = regexp.MustCompile(`^[A-Za-z0-9_.-]{1,64}$`)
)

var sexLabels = map[string]string{
	"MALE":    "Male",
	"FEMALE":  "Female",
	"OTHER":   "Other",
	"UNKNOWN": "Unknown",
}

// SearchConfig declares how phenopackets are searched. The "hpo" filter
// matches any record whose term array contains the given ontology term.
func SearchConfig() search.EntityConfig {
	return search.EntityConfig{
		Kind:          "phenopacket",
		Table:         "phenopackets",
		SelectColumns: phenopacketCols,
		Fields: search.FieldSet{
			"sex": {
				Param: "sex", Column: "sex",
				Enum: []string{"MALE", "FEMALE", "OTHER", "UNKNOWN"},
			},
			"gene": {
				Param: "gene", Column: "gene_symbol",
				Pattern: genePattern, MaxLen: 20, CaseFold: true,
			},
			"hpo": {
				Param: "hpo", Column: "hpo_terms",
				Pattern: hpoPattern, MaxLen: 10,
				Clause: "hpo_terms @> ARRAY[?]::text[]",
			},
			"pmid": {
				Param: "pmid", Column: "pmid",
				Pattern: pmidPattern, MaxLen: 8,
			},
			"subject": {
				Param: "subject", Column: "subject_id",
				Pattern: subjectPattern, MaxLen: 64,
			},
		},
		Text: search.TextConfig{
			Columns: []search.WeightedColumn{
				{Column: "packet_id", Weight: "A"},
				{Column: "gene_symbol", Weight: "A"},
				{Column: "subject_id", Weight: "B"},
				{Column: "summary", Weight: "C"},
			},
			IdentifierColumns: []string{"packet_id", "gene_symbol"},
		},
		Facets: []search.FacetDim{
			{Param: "sex", Column: "sex", Labels: sexLabels},
			{Param: "gene", Column: "gene_symbol"},
		},
	}
}
