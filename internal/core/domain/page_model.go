package domain

const defaultPageSize = 10

// Page selects a window of a listing, Number starting from 1.
type Page struct {
	Number int
	Size   int
}

func NewPage(pageNumber, pageSize int) Page {
	pNumber := 1
	if pageNumber > 0 {
		pNumber = pageNumber
	}

	pSize := defaultPageSize
	if pageSize > 0 {
		pSize = pageSize
	}

	return Page{
		Number: pNumber,
		Size:   pSize,
	}
}

// Bounds returns the [start, end) indexes of the page within a listing of
// total elements. Non positive numbers and sizes fall back to the defaults
// of NewPage.
func (p Page) Bounds(total int) (int, int) {
	p = NewPage(p.Number, p.Size)
	start := (p.Number - 1) * p.Size
	if start > total {
		start = total
	}
	end := start + p.Size
	if end > total {
		end = total
	}
	return start, end
}
