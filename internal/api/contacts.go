package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"rhystmorgan/contactbook/internal/book"
	"rhystmorgan/contactbook/internal/models"
	"rhystmorgan/contactbook/internal/validation"
)

// Contacts serves the contact book over HTTP. Listing never changes the
// filter or page the TUI is looking at.
type Contacts struct {
	Book         *book.ContactBook
	ErrorHandler func(context.Context, error)
}

type ContactModel struct {
	ID int64 `json:"id" readOnly:"true" example:"1700000000000"`

	FirstName string `json:"firstName" example:"Ada"`
	LastName  string `json:"lastName"  example:"Lovelace"`
	Phone     string `json:"phone"     example:"555-0100"`
	Email     string `json:"email"     example:"ada@example.com"`
}

type ContactInput struct {
	FirstName string `json:"firstName" example:"Ada"`
	LastName  string `json:"lastName"  example:"Lovelace"`
	Phone     string `json:"phone"     example:"555-0100"`
	Email     string `json:"email"     example:"ada@example.com"`
}

func toModel(c models.Contact) ContactModel {
	return ContactModel{
		ID:        c.ID,
		FirstName: c.FirstName,
		LastName:  c.LastName,
		Phone:     c.Phone,
		Email:     c.Email,
	}
}

func (h *Contacts) RegisterList(api huma.API) { // called by [huma.AutoRegister]
	huma.Get(api, "/",
		handlerWithErrorHandler(h.list, h.ErrorHandler),
		opErrors(http.StatusUnprocessableEntity, http.StatusInternalServerError),
	)
}

type ContactsListOutput struct {
	Body struct {
		Contacts []ContactModel `json:"contacts"`
		Page     int            `json:"page"`
		Total    int            `json:"total"`
		Count    int            `json:"count"`
		Info     string         `json:"info" example:"1/3"`
	}
}

func (h *Contacts) list(_ context.Context, input *struct {
	Page  int    `query:"page"  default:"1" minimum:"1" doc:"Page to return, clamped to the last page"`
	Field string `query:"field" enum:"firstName,lastName,phone,email" doc:"Field to filter on"`
	Value string `query:"value" doc:"Case-insensitive substring the field must contain"`
}) (*ContactsListOutput, error) {
	var filter *book.Filter
	if input.Field != "" {
		field, err := models.ParseField(input.Field)
		if err != nil {
			return nil, huma.Error422UnprocessableEntity("invalid filter field", err)
		}
		filter = &book.Filter{Field: field, Value: input.Value}
	}

	page := h.Book.ViewOf(filter, input.Page)

	out := &ContactsListOutput{}
	out.Body.Contacts = make([]ContactModel, 0, len(page.Contacts))
	for _, c := range page.Contacts {
		out.Body.Contacts = append(out.Body.Contacts, toModel(c))
	}
	out.Body.Page = page.Number
	out.Body.Total = page.Total
	out.Body.Count = page.Count
	out.Body.Info = page.Info()

	return out, nil
}

func (h *Contacts) RegisterPost(api huma.API) { // called by [huma.AutoRegister]
	huma.Post(api, "/",
		handlerWithErrorHandler(h.post, h.ErrorHandler),
		opErrors(http.StatusUnprocessableEntity, http.StatusInternalServerError),
		func(o *huma.Operation) { o.DefaultStatus = http.StatusCreated },
	)
}

type ContactOutput struct {
	Body ContactModel
}

func (h *Contacts) post(ctx context.Context, input *struct {
	Body ContactInput
}) (*ContactOutput, error) {
	contact, err := h.Book.Add(ctx, input.Body.FirstName, input.Body.LastName, input.Body.Phone, input.Body.Email)
	if err != nil {
		return nil, mapError(err)
	}
	return &ContactOutput{Body: toModel(contact)}, nil
}

func (h *Contacts) RegisterGet(api huma.API) { // called by [huma.AutoRegister]
	huma.Get(api, "/{id}",
		handlerWithErrorHandler(h.get, h.ErrorHandler),
		opErrors(http.StatusNotFound),
	)
}

func (h *Contacts) get(_ context.Context, input *struct {
	ID int64 `path:"id" doc:"ID of the contact to get"`
}) (*ContactOutput, error) {
	contact, ok := h.Book.Get(input.ID)
	if !ok {
		return nil, huma.Error404NotFound("id not found", book.ErrNotFound)
	}
	return &ContactOutput{Body: toModel(contact)}, nil
}

func (h *Contacts) RegisterPut(api huma.API) { // called by [huma.AutoRegister]
	huma.Put(api, "/{id}",
		handlerWithErrorHandler(h.put, h.ErrorHandler),
		opErrors(http.StatusNotFound, http.StatusUnprocessableEntity, http.StatusInternalServerError),
	)
}

func (h *Contacts) put(ctx context.Context, input *struct {
	ID   int64 `path:"id" doc:"ID of the contact to edit"`
	Body ContactInput
}) (*ContactOutput, error) {
	contact, err := h.Book.Edit(ctx, input.ID, input.Body.FirstName, input.Body.LastName, input.Body.Phone, input.Body.Email)
	if err != nil {
		return nil, mapError(err)
	}
	return &ContactOutput{Body: toModel(contact)}, nil
}

func (h *Contacts) RegisterDel(api huma.API) { // called by [huma.AutoRegister]
	huma.Delete(api, "/{id}",
		handlerWithErrorHandler(h.del, h.ErrorHandler),
		opErrors(http.StatusNotFound, http.StatusInternalServerError),
	)
}

func (h *Contacts) del(ctx context.Context, input *struct {
	ID int64 `path:"id" doc:"ID of the contact to delete"`
}) (*struct{}, error) {
	return nil, mapError(h.Book.Delete(ctx, input.ID))
}

// mapError turns book errors into HTTP errors. A persistence failure is a
// 500 even though the change is kept in memory.
func mapError(err error) error {
	var invalid *validation.Error
	switch {
	case err == nil:
		return nil

	case errors.As(err, &invalid):
		details := make([]error, 0, len(invalid.Errors))
		for _, ve := range invalid.Errors {
			details = append(details, &huma.ErrorDetail{
				Location: "body." + ve.Field,
				Message:  ve.Message,
			})
		}
		return huma.Error422UnprocessableEntity("invalid contact", details...)

	case errors.Is(err, book.ErrNotFound):
		return huma.Error404NotFound("id not found", err)

	case errors.Is(err, book.ErrPersist):
		return huma.Error500InternalServerError("contact change was not persisted", err)

	default:
		return err
	}
}
