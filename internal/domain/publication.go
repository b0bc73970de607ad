package domain

import "errors"

// ErrEmptyPublicationTitle is returned when a publication has no title.
var ErrEmptyPublicationTitle = errors.New("publication title cannot be empty")

// BibEntry holds the bibliographic record of a publication. Authors is a
// list because some sources report a single joined string while others
// report individual names; normalization happens at the source boundary.
type BibEntry struct {
	Title     string   `json:"title"`
	Authors   []string `json:"author,omitempty"`
	PubYear   string   `json:"pubYear,omitempty"`
	Venue     string   `json:"venue,omitempty"`
	Citation  string   `json:"citation,omitempty"`
	Abstract  string   `json:"abstract,omitempty"`
	Journal   string   `json:"journal,omitempty"`
	Volume    string   `json:"volume,omitempty"`
	Pages     string   `json:"pages,omitempty"`
	Publisher string   `json:"publisher,omitempty"`
}

// Publication represents a single scholarly work.
type Publication struct {
	Bib          BibEntry `json:"bib"`
	AuthorIDs    []string `json:"authorId,omitempty"`
	NumCitations int      `json:"numCitations"`
	CitedByURL   string   `json:"citedbyUrl,omitempty"`
	PubURL       string   `json:"pubUrl,omitempty"`
	EprintURL    string   `json:"eprintUrl,omitempty"`
	Filled       bool     `json:"filled"`
}

// Validate checks if the Publication has valid data.
func (p *Publication) Validate() error {
	if p.Bib.Title == "" {
		return ErrEmptyPublicationTitle
	}

	return nil
}
