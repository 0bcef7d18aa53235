package service

import (
	"errors"
	"fmt"
	"strings"

	"github.com/carelog/internal/db"
	"gorm.io/gorm"
)

var (
	// ErrContactNotFound is returned when the referenced contact does not exist.
	ErrContactNotFound = errors.New("contact not found")
	// ErrInvalidContact is returned when name, relation or phone is missing.
	ErrInvalidContact = errors.New("invalid contact")
	// ErrInvalidPhone is returned when a phone string contains no digits to dial.
	ErrInvalidPhone = errors.New("phone number has no digits")
)

// seedContacts gives a fresh install a non-blank family screen.
var seedContacts = []db.Contact{
	{Name: "Maria", Relation: "Daughter", Photo: "👩‍💼", Phone: "(11) 99999-1234"},
	{Name: "João", Relation: "Son", Photo: "👨‍💻", Phone: "(11) 99999-5678"},
	{Name: "Ana", Relation: "Granddaughter", Photo: "👩‍🎓", Phone: "(11) 99999-9876"},
	{Name: "Dr. Silva", Relation: "Doctor", Photo: "👨‍⚕️", Phone: "(11) 99999-4321"},
}

// ContactService owns the family contact list and the dial-out boundary.
type ContactService struct {
	db *gorm.DB
}

// ContactInput carries the fields configurable on the contact form.
type ContactInput struct {
	Name     string
	Relation string
	Photo    string
	Phone    string
}

// NewContactService constructs a ContactService.
func NewContactService(gdb *gorm.DB) *ContactService {
	return &ContactService{db: gdb}
}

// List returns all contacts, oldest first.
func (s *ContactService) List() ([]db.Contact, error) {
	var contacts []db.Contact
	if err := s.db.Order("created_at ASC").Find(&contacts).Error; err != nil {
		return nil, fmt.Errorf("list contacts: %w", err)
	}
	return contacts, nil
}

// ListByName returns all contacts ordered alphabetically, as shown on the
// admin screen.
func (s *ContactService) ListByName() ([]db.Contact, error) {
	var contacts []db.Contact
	if err := s.db.Order("name ASC").Find(&contacts).Error; err != nil {
		return nil, fmt.Errorf("list contacts: %w", err)
	}
	return contacts, nil
}

// Get returns a contact by ID.
func (s *ContactService) Get(id uint) (*db.Contact, error) {
	var contact db.Contact
	if err := s.db.First(&contact, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrContactNotFound
		}
		return nil, fmt.Errorf("get contact: %w", err)
	}
	return &contact, nil
}

// Create validates and stores a new contact. An empty photo falls back to
// the placeholder glyph.
func (s *ContactService) Create(input ContactInput) (*db.Contact, error) {
	if strings.TrimSpace(input.Name) == "" ||
		strings.TrimSpace(input.Relation) == "" ||
		strings.TrimSpace(input.Phone) == "" {
		return nil, fmt.Errorf("%w: name, relation and phone are required", ErrInvalidContact)
	}

	contact := db.Contact{
		Name:     strings.TrimSpace(input.Name),
		Relation: strings.TrimSpace(input.Relation),
		Photo:    strings.TrimSpace(input.Photo),
		Phone:    strings.TrimSpace(input.Phone),
	}
	if contact.Photo == "" {
		contact.Photo = db.DefaultContactPhoto
	}

	if err := s.db.Create(&contact).Error; err != nil {
		return nil, fmt.Errorf("create contact: %w", err)
	}
	return &contact, nil
}

// Delete removes a contact by ID.
func (s *ContactService) Delete(id uint) error {
	if err := s.db.Delete(&db.Contact{}, id).Error; err != nil {
		return fmt.Errorf("delete contact: %w", err)
	}
	return nil
}

// SetAdmin toggles the display-only ADM flag on a contact.
func (s *ContactService) SetAdmin(id uint, isAdmin bool) (*db.Contact, error) {
	var contact db.Contact
	if err := s.db.First(&contact, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrContactNotFound
		}
		return nil, fmt.Errorf("find contact: %w", err)
	}

	contact.IsAdmin = isAdmin
	if err := s.db.Save(&contact).Error; err != nil {
		return nil, fmt.Errorf("update contact: %w", err)
	}
	return &contact, nil
}

// SeedIfEmpty inserts the example contacts once, when the table is first
// observed empty. Repeated calls are no-ops.
func (s *ContactService) SeedIfEmpty() (bool, error) {
	var count int64
	if err := s.db.Model(&db.Contact{}).Count(&count).Error; err != nil {
		return false, fmt.Errorf("count contacts: %w", err)
	}
	if count > 0 {
		return false, nil
	}

	contacts := make([]db.Contact, len(seedContacts))
	copy(contacts, seedContacts)
	if err := s.db.Create(&contacts).Error; err != nil {
		return false, fmt.Errorf("seed contacts: %w", err)
	}
	return true, nil
}

// DialString normalizes a phone string for the platform call handler:
// everything but digits is stripped and the result is rendered as a tel URL.
// A string with no digits is a validation error, not a dial.
func DialString(phone string) (string, error) {
	var digits strings.Builder
	for _, r := range phone {
		if r >= '0' && r <= '9' {
			digits.WriteRune(r)
		}
	}
	if digits.Len() == 0 {
		return "", ErrInvalidPhone
	}
	return "tel:+" + digits.String(), nil
}
