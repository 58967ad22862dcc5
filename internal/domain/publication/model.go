package publication

import (
	"regexp"
	"time"

	"github.com/google/uuid"

	"github.com/phenobase/phenobase/internal/platform/search"
)

// Publication is a literature reference cited by curated records, keyed by
// its PubMed identifier.
type Publication struct {
	ID          uuid.UUID `db:"id" json:"id"`
	PMID        string    `db:"pmid" json:"pmid"`
	Title       string    `db:"title" json:"title"`
	FirstAuthor *string   `db:"first_author" json:"first_author,omitempty"`
	Journal     *string   `db:"journal" json:"journal,omitempty"`
	Year        *int      `db:"year" json:"year,omitempty"`
	Abstract    *string   `db:"abstract" json:"abstract,omitempty"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`
}

var (
	pmidPattern    = regexp.MustCompile(`^[0-9]{1,8}$`)
	yearPattern    = regexp.MustCompile(`^(19|20)[0-9]{2}$`)
	journalPattern = regexp.MustCompile(`^[\pL\pN .,&()'-]{1,120}$`)
)

func SearchConfig() search.EntityConfig {
	return search.EntityConfig{
		Kind:          "publication",
		Table:         "publications",
		SelectColumns: publicationCols,
		Fields: search.FieldSet{
			"pmid": {
				Param: "pmid", Column: "pmid",
				Pattern: pmidPattern, MaxLen: 8,
			},
			"journal": {
				Param: "journal", Column: "journal",
				Pattern: journalPattern, CaseFold: true,
			},
			"year": {
				Param: "year", Column: "year",
				Pattern: yearPattern, MaxLen: 4,
				Clause: "year = (?)::integer",
			},
		},
		Text: search.TextConfig{
			Columns: []search.WeightedColumn{
				{Column: "pmid", Weight: "A"},
				{Column: "title", Weight: "B"},
				{Column: "first_author", Weight: "B"},
				{Column: "abstract", Weight: "D"},
			},
			IdentifierColumns: []string{"pmid"},
		},
		Facets: []search.FacetDim{
			{Param: "journal", Column: "journal"},
			{Param: "year", Column: "year"},
		},
	}
}
