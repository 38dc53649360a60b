package borrowing

import (
	"strconv"

	"gorm.io/gorm"
)

// Principal is the acting user as the access policy sees it. A nil *Principal
// is an anonymous request.
type Principal struct {
	ID       uint
	Username string
	FullName string
	IsStaff  bool
}

// Filters are the staff-only list predicates; both compose with AND.
// Values arrive as raw query strings: is_active is honored only for the exact
// literals "true"/"false", user_id only when numeric. Anything else counts as
// filter absent, matching the reference behavior.
type Filters struct {
	IsActive string
	UserID   string
}

// scope narrows a borrowing query to what the principal may see: staff see
// everything, regular users only their own records. Callers must reject
// anonymous principals before building a query.
func scope(query *gorm.DB, p *Principal) *gorm.DB {
	if p.IsStaff {
		return query
	}
	return query.Where("user_id = ?", p.ID)
}

// applyFilters adds the staff list predicates. Non-staff principals never get
// filtering: their scope is already a single user.
func applyFilters(query *gorm.DB, p *Principal, f Filters) *gorm.DB {
	if !p.IsStaff {
		return query
	}
	if f.IsActive == "true" || f.IsActive == "false" {
		query = query.Where("is_active = ?", f.IsActive == "true")
	}
	if f.UserID != "" {
		if userID, err := strconv.Atoi(f.UserID); err == nil {
			query = query.Where("user_id = ?", userID)
		}
	}
	return query
}

// IncludeBorrower reports whether responses for this principal carry the
// borrower's name. Regular users only ever see their own records, so the
// field stays implicit for them.
func IncludeBorrower(p *Principal) bool {
	return p != nil && p.IsStaff
}
