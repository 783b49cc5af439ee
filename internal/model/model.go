// Package model defines the request and response shapes exchanged with the
// identity and XDR query services.
package model

import "encoding/json"

// Credentials identify an API client. They are never persisted by the query client.
type Credentials struct {
	ClientID     string
	ClientSecret string
}

// IDTypeTenant marks an identity that is itself a tenant.
const IDTypeTenant = "tenant"

// Identity is the decoded "who am I" response.
type Identity struct {
	ID       string   `json:"id"`
	IDType   string   `json:"idType"`
	APIHosts APIHosts `json:"apiHosts"`
}

// APIHosts lists the service hosts for an identity.
type APIHosts struct {
	Global     string `json:"global,omitempty"`
	DataRegion string `json:"dataRegion"`
}

// Submission is the body of a query run request.
type Submission struct {
	TenantIDs   []string   `json:"tenantIds"`
	DeviceIDs   []string   `json:"deviceIds"`
	QueryFormat string     `json:"queryFormat"`
	AdHocQuery  AdHocQuery `json:"adHocQuery"`
}

// AdHocQuery carries the query text. Name only satisfies a required field.
type AdHocQuery struct {
	Name     string `json:"name"`
	Template string `json:"template"`
}

// Execution is the server-side state of a query run.
type Execution struct {
	ID     string `json:"id"`
	Status string `json:"status"`
	Result string `json:"result"`
}

// Column describes one result column.
type Column struct {
	Name string `json:"name"`
}

// ResultSet is a decoded results response. Items are sparse: any column may be absent.
// Raw keeps the response body as received so it can be re-rendered with field order intact.
type ResultSet struct {
	Metadata struct {
		Columns []Column `json:"columns"`
	} `json:"metadata"`
	Items []map[string]any `json:"items"`
	Raw   json.RawMessage  `json:"-"`
}

// ColumnNames returns the metadata column names in order.
func (r ResultSet) ColumnNames() []string {
	names := make([]string, 0, len(r.Metadata.Columns))
	for _, c := range r.Metadata.Columns {
		names = append(names, c.Name)
	}
	return names
}
