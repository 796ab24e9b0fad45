package web

import (
	"net/http"
	"net/url"
	"strconv"

	"github.com/erazemk/almacen/internal/store"
)

// DefaultPerPage is used when per_page is missing or not an allowed value.
const DefaultPerPage = 10

// PerPageOptions are the accepted per_page values.
var PerPageOptions = []int{10, 20, 45}

// Pager describes one page of a list and links to its neighbours.
type Pager struct {
	Page    int
	PerPage int
	Total   int
	Pages   int

	path  string
	query url.Values
}

func perPage(r *http.Request) int {
	n, err := strconv.Atoi(r.URL.Query().Get("per_page"))
	if err != nil {
		return DefaultPerPage
	}
	for _, opt := range PerPageOptions {
		if n == opt {
			return n
		}
	}
	return DefaultPerPage
}

// newPager reads page and per_page from r. Pages outside the valid range are
// clamped to the first or last page.
func newPager(r *http.Request, total int) *Pager {
	p := &Pager{
		PerPage: perPage(r),
		Total:   total,
		path:    r.URL.Path,
		query:   r.URL.Query(),
	}
	p.Pages = max(1, (total+p.PerPage-1)/p.PerPage)

	page, err := strconv.Atoi(p.query.Get("page"))
	switch {
	case err != nil || page < 1:
		page = 1
	case page > p.Pages:
		page = p.Pages
	}
	p.Page = page
	return p
}

// Store returns the limit and offset for the current page.
func (p *Pager) Store() store.Page {
	return store.Page{Limit: p.PerPage, Offset: (p.Page - 1) * p.PerPage}
}

// HasPrev reports whether there is a previous page.
func (p *Pager) HasPrev() bool { return p.Page > 1 }

// HasNext reports whether there is a next page.
func (p *Pager) HasNext() bool { return p.Page < p.Pages }

// PrevURL links to the previous page.
func (p *Pager) PrevURL() string { return p.URL(p.Page - 1) }

// NextURL links to the next page.
func (p *Pager) NextURL() string { return p.URL(p.Page + 1) }

// URL links to page n keeping the other query parameters.
func (p *Pager) URL(n int) string {
	q := url.Values{}
	for k, v := range p.query {
		q[k] = v
	}
	q.Set("page", strconv.Itoa(n))
	return p.path + "?" + q.Encode()
}

// Options lists the per_page choices for the page size selector.
func (p *Pager) Options() []int {
	return PerPageOptions
}

// First is the 1-based index of the first row on the page.
func (p *Pager) First() int {
	if p.Total == 0 {
		return 0
	}
	return (p.Page-1)*p.PerPage + 1
}

// Last is the 1-based index of the last row on the page.
func (p *Pager) Last() int {
	return min(p.Page*p.PerPage, p.Total)
}
