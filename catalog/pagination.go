package catalog

import (
	"sync"

	"github.com/anjiri1684/learnlingo/models"
)

// PageSize is both the initial visible count and the LoadMore increment.
const PageSize = 4

// Paginate returns the first visible teachers and whether more remain.
// visible below PageSize is raised to PageSize.
func Paginate(filtered []models.Teacher, visible int) ([]models.Teacher, bool) {
	if visible < PageSize {
		visible = PageSize
	}
	if visible > len(filtered) {
		visible = len(filtered)
	}
	return filtered[:visible], visible < len(filtered)
}

// Browser is one user's view over the catalog: criteria plus a growing page.
type Browser struct {
	mu       sync.Mutex
	all      []models.Teacher
	criteria Criteria
	filtered []models.Teacher
	visible  int
}

func NewBrowser(all []models.Teacher) *Browser {
	b := &Browser{visible: PageSize}
	b.SetCatalog(all)
	return b
}

// SetCatalog replaces the teachers, keeping the criteria and the visible count.
func (b *Browser) SetCatalog(all []models.Teacher) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.all = all
	b.filtered = ApplyFilters(all, b.criteria)
}

// SetCriteria refilters and resets the visible count to PageSize.
func (b *Browser) SetCriteria(c Criteria) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.criteria = c
	b.filtered = ApplyFilters(b.all, c)
	b.visible = PageSize
}

// Sync installs a fresh catalog and the requested criteria. The visible count
// goes back to PageSize only when the criteria differ from the current ones;
// Sync reports whether that happened.
func (b *Browser) Sync(all []models.Teacher, c Criteria) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	reset := !c.Equal(b.criteria)
	if reset {
		b.criteria = c
		b.visible = PageSize
	}
	b.all = all
	b.filtered = ApplyFilters(all, b.criteria)
	return reset
}

func (b *Browser) Criteria() Criteria {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.criteria
}

// LoadMore grows the visible count by PageSize, capped at the filtered length.
func (b *Browser) LoadMore() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.visible += PageSize
	if b.visible > len(b.filtered) {
		b.visible = len(b.filtered)
	}
	if b.visible < PageSize {
		b.visible = PageSize
	}
}

func (b *Browser) Visible() ([]models.Teacher, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	page, more := Paginate(b.filtered, b.visible)
	out := make([]models.Teacher, len(page))
	copy(out, page)
	return out, more
}

// Total is the number of teachers matching the criteria.
func (b *Browser) Total() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.filtered)
}
