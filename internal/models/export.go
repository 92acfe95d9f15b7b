package models

// ExportFormat selects the rendered roster file type.
type ExportFormat string

const (
	ExportCSV ExportFormat = "csv"
	ExportPDF ExportFormat = "pdf"
)

// Valid reports whether the format is one the exporter can render.
func (f ExportFormat) Valid() bool {
	return f == ExportCSV || f == ExportPDF
}

// ExportJob describes a queued roster export. FileName is where the rendered
// file will appear once the worker finishes.
type ExportJob struct {
	ID       string       `json:"id"`
	CourseID int          `json:"course_id"`
	Format   ExportFormat `json:"format"`
	FileName string       `json:"file_name"`
}
