package entity

// DocumentFormat selects how the finished brief is rendered.
type DocumentFormat string

const (
	FormatMarkdown DocumentFormat = "markdown"
	FormatPDF      DocumentFormat = "pdf"
	FormatDOCX     DocumentFormat = "docx"
)

// Document is a rendered brief ready to be sent to the user.
type Document struct {
	FileName    string
	ContentType string
	Data        []byte
}
