// Package pdf inspects uploaded PDF files. The page count discovered here
// becomes the book's TotalPages, which bounds page turns in the reader.
package pdf

import (
	"fmt"

	"rsc.io/pdf"
)

// CountPages returns the number of pages in the PDF at path.
func CountPages(path string) (int, error) {
	doc, err := pdf.Open(path)
	if err != nil {
		return 0, fmt.Errorf("open pdf: %w", err)
	}
	return doc.NumPage(), nil
}
