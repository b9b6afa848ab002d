package book

import (
	"fmt"

	"rhystmorgan/contactbook/internal/models"
)

// Page is one window of the visible contacts.
type Page struct {
	Contacts []models.Contact
	Number   int
	Total    int
	Count    int
}

// Info renders the page position as "current/total".
func (p Page) Info() string {
	return fmt.Sprintf("%d/%d", p.Number, p.Total)
}

func (p Page) HasPrev() bool { return p.Number > 1 }
func (p Page) HasNext() bool { return p.Number < p.Total }

// totalPages is ceil(count/perPage), never less than one.
func totalPages(count, perPage int) int {
	return max(1, (count+perPage-1)/perPage)
}

// pageOf slices page n out of visible. n must already be in range.
func pageOf(visible []models.Contact, n, perPage int) Page {
	start := min((n-1)*perPage, len(visible))
	end := min(start+perPage, len(visible))

	return Page{
		Contacts: append([]models.Contact(nil), visible[start:end]...),
		Number:   n,
		Total:    totalPages(len(visible), perPage),
		Count:    len(visible),
	}
}
