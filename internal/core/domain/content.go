package domain

import "time"

// NewsPost is a complex-scoped announcement.
type NewsPost struct {
	ID        string
	ComplexID *string
	Title     string
	Content   string
	CreatedBy *string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// AdItem is a complex-scoped advertisement.
type AdItem struct {
	ID        string
	ComplexID *string
	Title     string
	Body      string
	ImageURL  *string
	StartsAt  *time.Time
	EndsAt    *time.Time
	CreatedBy *string
	CreatedAt time.Time
}

// CustomizationID is the single row key of the global customization document.
const CustomizationID = "global"

// PageCustomization holds SUPER-editable page annotations.
type PageCustomization struct {
	Note string `json:"note,omitempty"`
}

// AdminCustomization is the SUPER-editable global document replacing the
// default menu tree and page notes. Clients cache it locally but the stored
// row is authoritative.
type AdminCustomization struct {
	ID        string
	Menus     []MenuNode
	Pages     map[string]PageCustomization
	UpdatedAt time.Time
}

// MenuTree returns the customized tree, falling back to the built-in one.
func (c AdminCustomization) MenuTree() []MenuNode {
	if len(c.Menus) > 0 {
		return c.Menus
	}
	return DefaultMenuTree()
}
