package models

import "time"

// Vocabulary names the descriptor family an entry's action is expressed in.
type Vocabulary string

const (
	// VocabularyHTTP describes actions by HTTP method (GET, POST, ...).
	VocabularyHTTP Vocabulary = "http"
	// VocabularyClient describes actions by browser event type (click, submit, ...).
	VocabularyClient Vocabulary = "client"
)

// ActionDescriptor is the raw, unclassified description of an action.
type ActionDescriptor struct {
	Vocabulary Vocabulary
	Value      string
}

// Entry is implemented by everything a SessionActionBuffer can hold.
// The buffer treats entries as opaque apart from their descriptor.
type Entry interface {
	Descriptor() ActionDescriptor
}

// BrowserEntry records one UI event reported by the browser.
type BrowserEntry struct {
	EventType   string    `json:"eventType"`
	ElementID   string    `json:"elementId,omitempty"`
	PageURL     string    `json:"pageUrl,omitempty"`
	ReferrerURL string    `json:"referrerUrl,omitempty"`
	Timestamp   time.Time `json:"timestamp"`
	ClientIP    string    `json:"-"`
}

// Descriptor returns the client event type in the client vocabulary.
func (e BrowserEntry) Descriptor() ActionDescriptor {
	return ActionDescriptor{Vocabulary: VocabularyClient, Value: e.EventType}
}

// ServerEntry records one request handled by the server.
type ServerEntry struct {
	Method           string    `json:"method"`
	Endpoint         string    `json:"endpoint"`
	Handler          string    `json:"handler,omitempty"`
	ParameterSummary string    `json:"parameters,omitempty"`
	Timestamp        time.Time `json:"timestamp"`
	ClientIP         string    `json:"-"`
}

// Descriptor returns the HTTP method in the http vocabulary.
func (e ServerEntry) Descriptor() ActionDescriptor {
	return ActionDescriptor{Vocabulary: VocabularyHTTP, Value: e.Method}
}
