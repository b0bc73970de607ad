package openalex

import (
	"strconv"
	"strings"

	"github.com/vnykmshr/papertrail/internal/domain"
)

// Wire types mirror the subset of OpenAlex response fields the application
// consumes.

type authorListResponse struct {
	Results []authorRecord `json:"results"`
}

type authorRecord struct {
	ID                    string              `json:"id"`
	DisplayName           string              `json:"display_name"`
	ORCID                 string              `json:"orcid"`
	CitedByCount          int                 `json:"cited_by_count"`
	LastKnownInstitutions []institutionRecord `json:"last_known_institutions"`
	Topics                []topicRecord       `json:"topics"`
}

type institutionRecord struct {
	DisplayName string `json:"display_name"`
}

type topicRecord struct {
	DisplayName string `json:"display_name"`
}

type workListResponse struct {
	Results []workRecord `json:"results"`
}

type workRecord struct {
	ID              string             `json:"id"`
	DOI             string             `json:"doi"`
	Title           string             `json:"title"`
	DisplayName     string             `json:"display_name"`
	PublicationYear int                `json:"publication_year"`
	CitedByCount    int                `json:"cited_by_count"`
	PrimaryLocation *locationRecord    `json:"primary_location"`
	OpenAccess      openAccessRecord   `json:"open_access"`
	Authorships     []authorshipRecord `json:"authorships"`
}

type locationRecord struct {
	Source *sourceRecord `json:"source"`
}

type sourceRecord struct {
	DisplayName string `json:"display_name"`
}

type openAccessRecord struct {
	OAURL string `json:"oa_url"`
}

type authorshipRecord struct {
	Author authorStub `json:"author"`
}

type authorStub struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name"`
	ORCID       string `json:"orcid"`
}

// shortID strips the https://openalex.org/ prefix OpenAlex puts on every
// entity ID.
func shortID(id string) string {
	if i := strings.LastIndex(id, "/"); i >= 0 {
		return id[i+1:]
	}
	return id
}

func (r authorRecord) toDomain() domain.Author {
	author := domain.Author{
		ScholarID: shortID(r.ID),
		Name:      r.DisplayName,
		CitedBy:   r.CitedByCount,
		IDs: domain.AuthorIDs{
			OpenAlex: r.ID,
			ORCID:    r.ORCID,
		},
	}

	if len(r.LastKnownInstitutions) > 0 {
		author.Institution = r.LastKnownInstitutions[0].DisplayName
		author.Affiliation = r.LastKnownInstitutions[0].DisplayName
	}

	for _, topic := range r.Topics {
		author.Interests = append(author.Interests, topic.DisplayName)
	}
	return author
}

func (r workRecord) toDomain() domain.Publication {
	title := r.Title
	if title == "" {
		title = r.DisplayName
	}

	pub := domain.Publication{
		Bib: domain.BibEntry{
			Title: title,
		},
		NumCitations: r.CitedByCount,
		PubURL:       r.DOI,
		EprintURL:    r.OpenAccess.OAURL,
		Filled:       true,
	}

	if r.PublicationYear > 0 {
		pub.Bib.PubYear = strconv.Itoa(r.PublicationYear)
	}
	if r.PrimaryLocation != nil && r.PrimaryLocation.Source != nil {
		pub.Bib.Venue = r.PrimaryLocation.Source.DisplayName
		pub.Bib.Citation = r.PrimaryLocation.Source.DisplayName
	}

	for _, authorship := range r.Authorships {
		pub.Bib.Authors = append(pub.Bib.Authors, authorship.Author.DisplayName)
		pub.AuthorIDs = append(pub.AuthorIDs, shortID(authorship.Author.ID))
	}
	return pub
}
