// Package classifier maps raw action descriptors onto the closed ActionCategory set.
//
// Two vocabularies are understood: HTTP methods reported by the server-side
// capture middleware, and event type tags reported by the browser. Anything
// unrecognized falls back to CategoryOther; Classify never fails.
package classifier

import (
	"strings"

	"sessiontrail/internal/telemetry/models"
)

// httpCategories maps upper-cased HTTP methods to categories.
var httpCategories = map[string]models.ActionCategory{
	"POST":    models.CategoryCreate,
	"GET":     models.CategoryRead,
	"HEAD":    models.CategoryRead,
	"OPTIONS": models.CategoryRead,
	"PUT":     models.CategoryUpdate,
	"PATCH":   models.CategoryUpdate,
	"DELETE":  models.CategoryDelete,
}

// clientCategories maps lower-cased browser event types to categories.
var clientCategories = map[string]models.ActionCategory{
	// Create: the user produced something new
	"submit": models.CategoryCreate,
	"create": models.CategoryCreate,
	"upload": models.CategoryCreate,
	"add":    models.CategoryCreate,

	// Read: navigation and passive interaction
	"click":    models.CategoryRead,
	"view":     models.CategoryRead,
	"pageview": models.CategoryRead,
	"navigate": models.CategoryRead,
	"load":     models.CategoryRead,
	"scroll":   models.CategoryRead,
	"focus":    models.CategoryRead,
	"search":   models.CategoryRead,
	"hover":    models.CategoryRead,

	// Update: editing existing state
	"input":  models.CategoryUpdate,
	"change": models.CategoryUpdate,
	"edit":   models.CategoryUpdate,
	"select": models.CategoryUpdate,
	"toggle": models.CategoryUpdate,
	"drag":   models.CategoryUpdate,
	"drop":   models.CategoryUpdate,

	// Delete
	"delete": models.CategoryDelete,
	"remove": models.CategoryDelete,
	"clear":  models.CategoryDelete,
}

// Classify returns the category for a descriptor.
// Unknown vocabularies and unknown values default to CategoryOther.
func Classify(d models.ActionDescriptor) models.ActionCategory {
	value := strings.TrimSpace(d.Value)
	switch d.Vocabulary {
	case models.VocabularyHTTP:
		if cat, ok := httpCategories[strings.ToUpper(value)]; ok {
			return cat
		}
	case models.VocabularyClient:
		if cat, ok := clientCategories[strings.ToLower(value)]; ok {
			return cat
		}
	}
	return models.CategoryOther
}

// ClassifyMethod is a shorthand for classifying an HTTP method.
func ClassifyMethod(method string) models.ActionCategory {
	return Classify(models.ActionDescriptor{Vocabulary: models.VocabularyHTTP, Value: method})
}

// ClassifyEventType is a shorthand for classifying a browser event type.
func ClassifyEventType(eventType string) models.ActionCategory {
	return Classify(models.ActionDescriptor{Vocabulary: models.VocabularyClient, Value: eventType})
}
