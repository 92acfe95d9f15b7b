package models

// ResourceFormat tags the kind of an uploaded course file.
type ResourceFormat string

const (
	FormatPDF   ResourceFormat = "pdf"
	FormatSWF   ResourceFormat = "swf"
	FormatImage ResourceFormat = "image"
	FormatTxt   ResourceFormat = "txt"
	FormatFile  ResourceFormat = "file"
	FormatOther ResourceFormat = "other"
)

// Loadable reports whether the resource's bytes are served from the course's
// Content directory when the resource is fetched.
func (f ResourceFormat) Loadable() bool {
	switch f {
	case FormatPDF, FormatSWF, FormatImage, FormatTxt, FormatFile:
		return true
	}
	return false
}

// Resource is a course material record, keyed by (name, course).
type Resource struct {
	Name           string         `db:"name" json:"name"`
	CourseID       int            `db:"course_id" json:"course_id"`
	Title          string         `db:"title" json:"title"`
	Format         ResourceFormat `db:"format" json:"format"`
	InPageLocation int            `db:"in_page_location" json:"in_page_location"`
	Description    string         `db:"description" json:"description"`
}

// ResourceContent pairs a resource record with its file bytes, when loadable.
type ResourceContent struct {
	Resource
	Data []byte `json:"data,omitempty"`
}
