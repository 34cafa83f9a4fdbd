package models

// ActionCategory classifies a buffered entry by the kind of operation it describes.
// Categories are assigned only by the classifier package.
type ActionCategory string

const (
	CategoryCreate ActionCategory = "create"
	CategoryRead   ActionCategory = "read"
	CategoryUpdate ActionCategory = "update"
	CategoryDelete ActionCategory = "delete"
	// CategoryOther is the fallback for descriptors no vocabulary recognizes.
	CategoryOther ActionCategory = "other"
)

// AllCategories lists every category in a stable order. Schedulers iterate it
// to register one threshold flush per category.
var AllCategories = []ActionCategory{
	CategoryCreate,
	CategoryRead,
	CategoryUpdate,
	CategoryDelete,
	CategoryOther,
}

// IsValid checks if the category is one of the supported enum values.
func (c ActionCategory) IsValid() bool {
	switch c {
	case CategoryCreate, CategoryRead, CategoryUpdate, CategoryDelete, CategoryOther:
		return true
	}
	return false
}

func (c ActionCategory) String() string { return string(c) }
