package models

const (
	// ContextSeparator delimits prompt layers. The completion wrapper splits on
	// the first occurrence to separate system and user messages.
	ContextSeparator = "\n---\n"

	// MetadataContentLimit caps the content copy stored in embedding-record
	// metadata.
	MetadataContentLimit = 1000

	// ContentPreviewLimit caps the content preview in source citations.
	ContentPreviewLimit = 200
)
