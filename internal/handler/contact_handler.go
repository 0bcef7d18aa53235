package handler

import (
	"errors"
	"net/http"

	"github.com/carelog/internal/db"
	"github.com/carelog/internal/service"
	"github.com/gin-gonic/gin"
)

type contactPayload struct {
	Name     string `json:"name"`
	Relation string `json:"relation"`
	Photo    string `json:"photo"`
	Phone    string `json:"phone"`
}

type adminPayload struct {
	IsAdmin bool `json:"is_admin"`
}

// ListContacts returns the family contact list, seeding the example
// contacts first when the table is empty so a fresh install is not blank.
func (a *API) ListContacts(c *gin.Context) {
	seeded, err := a.contacts.SeedIfEmpty()
	if err != nil {
		respondError(c, http.StatusInternalServerError, "could not load contacts")
		return
	}

	var contacts []db.Contact
	if c.Query("order") == "name" {
		contacts, err = a.contacts.ListByName()
	} else {
		contacts, err = a.contacts.List()
	}
	if err != nil {
		respondError(c, http.StatusInternalServerError, "could not load contacts")
		return
	}

	items := make([]gin.H, 0, len(contacts))
	for _, contact := range contacts {
		items = append(items, contactToPayload(contact))
	}

	c.JSON(http.StatusOK, gin.H{"contacts": items, "seeded": seeded})
}

// CreateContact stores a new contact.
func (a *API) CreateContact(c *gin.Context) {
	var payload contactPayload
	if !bindJSON(c, &payload, "invalid request body") {
		return
	}

	contact, err := a.contacts.Create(service.ContactInput{
		Name:     payload.Name,
		Relation: payload.Relation,
		Photo:    payload.Photo,
		Phone:    payload.Phone,
	})
	if err != nil {
		handleContactError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"contact": contactToPayload(*contact)})
}

// DeleteContact removes a contact.
func (a *API) DeleteContact(c *gin.Context) {
	id, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, "invalid contact id")
		return
	}

	if err := a.contacts.Delete(id); err != nil {
		respondError(c, http.StatusInternalServerError, "could not delete contact")
		return
	}

	c.JSON(http.StatusOK, gin.H{"deleted": true})
}

// SetContactAdmin toggles the display-only ADM flag.
func (a *API) SetContactAdmin(c *gin.Context) {
	id, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, "invalid contact id")
		return
	}

	var payload adminPayload
	if !bindJSON(c, &payload, "invalid request body") {
		return
	}

	contact, err := a.contacts.SetAdmin(id, payload.IsAdmin)
	if err != nil {
		handleContactError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"contact": contactToPayload(*contact)})
}

// CallContact resolves a contact's phone into the tel URL the frontend
// hands to the platform's call handler. A phone with no digits is rejected
// instead of dialed.
func (a *API) CallContact(c *gin.Context) {
	id, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, "invalid contact id")
		return
	}

	contact, err := a.contacts.Get(id)
	if err != nil {
		handleContactError(c, err)
		return
	}

	dial, err := service.DialString(contact.Phone)
	if err != nil {
		handleContactError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"dial": dial, "contact": contactToPayload(*contact)})
}

func contactToPayload(contact db.Contact) gin.H {
	return gin.H{
		"id":       contact.ID,
		"name":     contact.Name,
		"relation": contact.Relation,
		"photo":    contact.Photo,
		"phone":    contact.Phone,
		"is_admin": contact.IsAdmin,
	}
}

func handleContactError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrContactNotFound):
		respondError(c, http.StatusNotFound, "contact not found")
	case errors.Is(err, service.ErrInvalidContact):
		respondError(c, http.StatusBadRequest, "name, relation and phone are required")
	case errors.Is(err, service.ErrInvalidPhone):
		respondError(c, http.StatusBadRequest, "phone number has no digits to dial")
	default:
		respondError(c, http.StatusInternalServerError, "operation failed")
	}
}
