package document

import "fmt"

// Loader dispatches file loading by declared type.
type Loader struct{}

func NewLoader() *Loader {
	return &Loader{}
}

func (l *Loader) Load(path, fileType string) ([]Record, error) {
	switch fileType {
	case FileTypePDF:
		return LoadPDF(path)
	case FileTypeExcel:
		return LoadExcel(path)
	default:
		return nil, fmt.Errorf("%w: unsupported file type %q", ErrExtraction, fileType)
	}
}
