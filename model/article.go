// Package model defines the document types flowing through the engine: the
// news-article shape of the source dataset and the search-facing views
// derived from it.
package model

// Entity is a named entity extracted from an article by the dataset's
// annotation pipeline.
type Entity struct {
	Name      string `json:"name"`
	Sentiment string `json:"sentiment,omitempty"`
}

// Entities groups an article's extracted entities by kind.
type Entities struct {
	Persons       []Entity `json:"persons"`
	Organizations []Entity `json:"organizations"`
	Locations     []Entity `json:"locations,omitempty"`
}

// Thread carries the publication metadata block of the source dataset.
type Thread struct {
	SiteFull string `json:"site_full"`
	Site     string `json:"site,omitempty"`
}

// Article is one news article as found in the dataset's JSON files. Only
// the fields the engine reads are modeled; unknown fields are ignored when
// decoding.
type Article struct {
	UUID      string   `json:"uuid"`
	Title     string   `json:"title"`
	Author    string   `json:"author"`
	Published string   `json:"published"`
	Language  string   `json:"language,omitempty"`
	Text      string   `json:"text"`
	Thread    Thread   `json:"thread"`
	Entities  Entities `json:"entities"`
}
