package document

import (
	"fmt"
	"path/filepath"

	"github.com/ledongthuc/pdf"
)

// LoadPDF extracts one record per page, in page order. Page positions
// are zero-based. A file that cannot be opened or parsed fails whole;
// no partial page list is returned.
func LoadPDF(path string) ([]Record, error) {
	f, r, err := pdf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: open pdf %s: %v", ErrExtraction, path, err)
	}
	defer f.Close()

	numPages := r.NumPage()
	records := make([]Record, 0, numPages)
	for i := 1; i <= numPages; i++ {
		page := r.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			return nil, fmt.Errorf("%w: extract page %d of %s: %v", ErrExtraction, i, path, err)
		}
		records = append(records, Record{
			Text: text,
			Meta: Metadata{
				SourceFile: path,
				FileName:   filepath.Base(path),
				FileType:   FileTypePDF,
				Position:   i - 1,
			},
		})
	}

	return records, nil
}
