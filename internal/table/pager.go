package table

// Pager slices a record list into fixed-size pages. It only tracks the
// current page; the count always comes from the store.
type Pager struct {
	size    int
	current int
}

// NewPager returns a pager on page 1. Sizes below 1 are raised to 1.
func NewPager(size int) Pager {
	if size < 1 {
		size = 1
	}
	return Pager{size: size, current: 1}
}

func (p *Pager) PageSize() int {
	return p.size
}

func (p *Pager) Current() int {
	if p.current < 1 {
		return 1
	}
	return p.current
}

// TotalPages is never below 1, even for an empty list.
func (p *Pager) TotalPages(count int) int {
	if count <= 0 {
		return 1
	}
	return (count + p.size - 1) / p.size
}

// GoTo moves to page, clamped to [1, TotalPages(count)].
func (p *Pager) GoTo(page, count int) int {
	total := p.TotalPages(count)
	switch {
	case page < 1:
		page = 1
	case page > total:
		page = total
	}
	p.current = page
	return page
}

func (p *Pager) Next(count int) int {
	return p.GoTo(p.Current()+1, count)
}

func (p *Pager) Previous(count int) int {
	return p.GoTo(p.Current()-1, count)
}

// Clamp re-applies the bounds after the list changed size.
func (p *Pager) Clamp(count int) int {
	return p.GoTo(p.Current(), count)
}

// Bounds returns the half-open index range of the current page.
func (p *Pager) Bounds(count int) (from, to int) {
	page := p.Clamp(count)
	from = (page - 1) * p.size
	to = from + p.size
	if to > count {
		to = count
	}
	if from > to {
		from = to
	}
	return from, to
}
