package views

// Paginator keeps a cursor over a list and the page that shows it. The
// action, term and search lists share it.
type Paginator struct {
	size   int
	offset int
	cursor int
	total  int
}

// NewPaginator creates a paginator showing size items per page
func NewPaginator(size int) *Paginator {
	if size <= 0 {
		size = 10
	}
	return &Paginator{size: size}
}

// SetTotal sets the list length, pulling the cursor back inside it
func (p *Paginator) SetTotal(total int) {
	p.total = total
	p.cursor = max(0, min(p.cursor, total-1))
	p.follow()
}

// Cursor returns the selected index
func (p *Paginator) Cursor() int { return p.cursor }

// CursorUp moves the selection up; false at the top
func (p *Paginator) CursorUp() bool { return p.move(-1) }

// CursorDown moves the selection down; false at the bottom
func (p *Paginator) CursorDown() bool { return p.move(1) }

func (p *Paginator) move(delta int) bool {
	next := p.cursor + delta
	if next < 0 || next >= p.total {
		return false
	}
	p.cursor = next
	p.follow()
	return true
}

// VisibleRange returns the [start, end) indices of the page
func (p *Paginator) VisibleRange() (start, end int) {
	return p.offset, min(p.offset+p.size, p.total)
}

// TotalPages is at least 1
func (p *Paginator) TotalPages() int {
	return max(1, (p.total+p.size-1)/p.size)
}

// CurrentPage is 1-based
func (p *Paginator) CurrentPage() int { return p.offset/p.size + 1 }

// Reset empties the list
func (p *Paginator) Reset() { *p = Paginator{size: p.size} }

// follow moves the page to the one holding the cursor
func (p *Paginator) follow() {
	p.offset = (p.cursor / p.size) * p.size
}
