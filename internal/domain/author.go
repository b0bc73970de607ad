package domain

import "errors"

// Common validation errors for Author
var (
	ErrEmptyAuthorID   = errors.New("author ID cannot be empty")
	ErrEmptyAuthorName = errors.New("author name cannot be empty")
)

// AuthorIDs holds the external identifiers an author may carry across
// indexing services. All fields are optional.
type AuthorIDs struct {
	ORCID     string `json:"orcid,omitempty"`
	OpenAlex  string `json:"openalex,omitempty"`
	Scopus    string `json:"scopus,omitempty"`
	Twitter   string `json:"twitter,omitempty"`
	Wikipedia string `json:"wikipedia,omitempty"`
	Scholar   string `json:"scholar,omitempty"`
}

// Author represents a researcher as returned by a scholarly source.
// A freshly searched author carries only its profile fields; Publications
// and Summary are populated by later enrichment steps, tracked by Filled.
type Author struct {
	ScholarID    string        `json:"scholarId"`
	Name         string        `json:"name"`
	Affiliation  string        `json:"affiliation,omitempty"`
	Institution  string        `json:"institution,omitempty"`
	EmailDomain  string        `json:"emailDomain,omitempty"`
	Interests    []string      `json:"interests,omitempty"`
	CitedBy      int           `json:"citedby"`
	URLPicture   string        `json:"urlPicture,omitempty"`
	IDs          AuthorIDs     `json:"ids"`
	Publications []Publication `json:"publications,omitempty"`
	Summary      *string       `json:"summary"`
	Filled       bool          `json:"filled"`
}

// NewAuthor creates an unfilled Author with the given identifier and name.
// Returns an error if validation fails.
func NewAuthor(scholarID, name string) (*Author, error) {
	author := &Author{
		ScholarID: scholarID,
		Name:      name,
	}

	if err := author.Validate(); err != nil {
		return nil, err
	}

	return author, nil
}

// Validate checks if the Author has valid data.
func (a *Author) Validate() error {
	if a.ScholarID == "" {
		return ErrEmptyAuthorID
	}

	if a.Name == "" {
		return ErrEmptyAuthorName
	}

	return nil
}

// SetSummary attaches a generated research summary to the author.
func (a *Author) SetSummary(summary string) {
	a.Summary = &summary
}
