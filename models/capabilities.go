package models

// Searchable is implemented by entities whose listings support free-text
// search. SearchFields returns the column names matched with LIKE.
type Searchable interface {
	SearchFields() []string
}

// FileBearing is implemented by entities that own uploaded files. The
// repository stores uploads under StoragePath()/<field> and records the
// resulting path through SetFileRef.
type FileBearing interface {
	FileFields() []string
	StoragePath() string
	FileRef(field string) string
	SetFileRef(field, path string)
}
