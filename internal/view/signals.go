package view

import (
	"encoding/json"
)

// ListSignals are the datastar signals carried by the invoices list page.
type ListSignals struct {
	Query string `json:"query"`
	Page  int    `json:"page"`
}

func signalsJSON(query string, page int) string {
	b, err := json.Marshal(ListSignals{Query: query, Page: page})
	if err != nil {
		return "{}"
	}
	return string(b)
}
