package models

// AuditContext is the correlated view of one SessionActionKey, built at flush
// time and serialized into the persisted record.
type AuditContext struct {
	SessionID      string          `json:"sessionId"`
	Category       ActionCategory  `json:"category"`
	BrowserEntries []BrowserEntry  `json:"browserEntries"`
	ServerEntries  []ServerEntry   `json:"serverEntries"`
	Snapshot       *ClientSnapshot `json:"snapshot,omitempty"`
}

// RepresentativeURL picks the URL a record is filed under: the first browser
// page URL, else the first server endpoint, else "unknown".
func (c AuditContext) RepresentativeURL() string {
	for _, e := range c.BrowserEntries {
		if e.PageURL != "" {
			return e.PageURL
		}
	}
	for _, e := range c.ServerEntries {
		if e.Endpoint != "" {
			return e.Endpoint
		}
	}
	return Unknown
}

// OriginIP picks the client address a record is attributed to: the first
// server entry IP, else the first browser entry IP, else "unknown".
func (c AuditContext) OriginIP() string {
	for _, e := range c.ServerEntries {
		if e.ClientIP != "" {
			return e.ClientIP
		}
	}
	for _, e := range c.BrowserEntries {
		if e.ClientIP != "" {
			return e.ClientIP
		}
	}
	return Unknown
}
