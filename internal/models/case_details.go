package models

import "encoding/json"

// PropertyInfo describes one property tied to the exchange. Monetary
// amounts are whole cents.
type PropertyInfo struct {
	Address      string `json:"address"`
	ValueCents   int64  `json:"valueCents"`
	Closed       bool   `json:"closed,omitempty"`
	ClosingDate  string `json:"closingDate,omitempty"`
	EscrowNumber string `json:"escrowNumber,omitempty"`
}

// CaseDetails is the opaque payload stored as JSON on the case row. Guards
// only ever read it; everything a guard needs must live here or on the
// case columns, never behind another query.
type CaseDetails struct {
	ClientName            string         `json:"clientName,omitempty"`
	ClientEmail           string         `json:"clientEmail,omitempty"`
	ClientPhone           string         `json:"clientPhone,omitempty"`
	RelinquishedProperty  *PropertyInfo  `json:"relinquishedProperty,omitempty"`
	ReplacementProperties []PropertyInfo `json:"replacementProperties,omitempty"`
	Documents             []string       `json:"documents,omitempty"`
	FundsDisbursedCents   int64          `json:"fundsDisbursedCents,omitempty"`
	HoldReleased          bool           `json:"holdReleased,omitempty"`
	HoldReason            string         `json:"holdReason,omitempty"`
}

// ParseCaseDetails decodes the stored JSON payload. An empty payload is a
// valid empty details struct, not an error.
func ParseCaseDetails(raw string) (CaseDetails, error) {
	var d CaseDetails
	if raw == "" || raw == "null" {
		return d, nil
	}
	if err := json.Unmarshal([]byte(raw), &d); err != nil {
		return CaseDetails{}, err
	}
	return d, nil
}
