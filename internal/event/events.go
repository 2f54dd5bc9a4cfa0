package event

type Type string

const (
	MetadataChunkLoadedEvent Type = "MetadataChunkLoadedEvent"
	MetadataFailedEvent      Type = "MetadataFailedEvent"
	GalleryUpdatedEvent      Type = "GalleryUpdatedEvent"
)
