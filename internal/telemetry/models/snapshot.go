package models

// ClientSnapshot describes the client environment of a session. One is kept
// per session and the first one written wins.
type ClientSnapshot struct {
	Browser string `json:"browser,omitempty"`
	OS      string `json:"os,omitempty"`
	Device  string `json:"device,omitempty"`
	Locale  string `json:"locale,omitempty"`
}
