// Package models defines the domain types shared by the cardex services.
package models

import "time"

// CardMetadata is what storage knows about a card file without parsing it.
type CardMetadata struct {
	Path      string    `json:"path"`
	Checksum  string    `json:"checksum"`
	Size      int64     `json:"size"`
	UpdatedAt time.Time `json:"updated_at"`
}

// CardRecord is a card file as tracked by the index. Invalid files are kept
// with Valid=false and the code that rejected them.
type CardRecord struct {
	Path      string    `json:"path"`
	Name      string    `json:"name"`
	Checksum  string    `json:"checksum"`
	Valid     bool      `json:"valid"`
	ErrorCode string    `json:"error_code,omitempty"`
	OpLength  int       `json:"op_length"`
	Body      string    `json:"-"`
	UpdatedAt time.Time `json:"updated_at"`
}

// PropertyRecord is one indexed content line of a valid card. Position 1 is FN.
type PropertyRecord struct {
	Path     string `json:"path"`
	Position int    `json:"position"`
	Group    string `json:"group,omitempty"`
	Name     string `json:"name"`
	Values   string `json:"values"`
}

// SearchHit is a card matched by a search query.
type SearchHit struct {
	Path    string `json:"path"`
	Name    string `json:"name"`
	Snippet string `json:"snippet,omitempty"`
}
