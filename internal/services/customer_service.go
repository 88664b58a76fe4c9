package services

import (
	"strings"

	"github.com/harborline/partner-survey/internal/models"
	"gorm.io/gorm"
)

// customerSearchLimit caps every customer search result set.
const customerSearchLimit = 50

// SearchCustomers returns up to 50 customers matching the term as a
// case-insensitive substring of the company name or the customer id. An empty
// term returns the first 50 by company name ascending.
func SearchCustomers(db *gorm.DB, term string) ([]models.Customer, error) {
	var customers []models.Customer

	query := db.Order("customer_company ASC").Limit(customerSearchLimit)
	if term != "" {
		// LOWER comparison keeps the match case-insensitive across drivers
		pattern := "%" + strings.ToLower(term) + "%"
		query = query.Where(
			"LOWER(customer_company) LIKE ? OR LOWER(customer_id) LIKE ?",
			pattern, pattern,
		)
	}

	if err := query.Find(&customers).Error; err != nil {
		return nil, err
	}
	return customers, nil
}
