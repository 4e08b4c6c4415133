package repository

// Page is a 1-based page request.
type Page struct {
	Number int
	Limit  int
}

func (p Page) offset() int {
	if p.Number < 1 {
		return 0
	}
	return (p.Number - 1) * p.Limit
}
