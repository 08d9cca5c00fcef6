package document

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/ashabalin/brief-refiner/internal/entity"
)

const baseTitle = "Бриф проекта"

type Formatter interface {
	Format(plainText string) ([]byte, error)
	ContentType() string
	FileExtension() string
}

type Factory struct{}

func NewFactory() *Factory {
	return &Factory{}
}

func (f *Factory) Create(format entity.DocumentFormat) (Formatter, error) {
	switch format {
	case entity.FormatMarkdown:
		return NewMarkdownFormatter(), nil
	case entity.FormatDOCX:
		return NewDOCXFormatter(), nil
	case entity.FormatPDF:
		return NewPDFFormatter(), nil
	default:
		return nil, fmt.Errorf("%w: %s", entity.ErrUnsupportedFormat, format)
	}
}

// Render turns the collected brief into a downloadable document in the
// requested format.
func (f *Factory) Render(data *entity.BriefData, format entity.DocumentFormat) (*entity.Document, error) {
	formatter, err := f.Create(format)
	if err != nil {
		return nil, err
	}

	payload, err := formatter.Format(RenderBody(data))
	if err != nil {
		return nil, fmt.Errorf("render %s document: %w", format, err)
	}

	return &entity.Document{
		FileName:    fmt.Sprintf("brief_%s%s", uuid.NewString()[:8], formatter.FileExtension()),
		ContentType: formatter.ContentType(),
		Data:        payload,
	}, nil
}
