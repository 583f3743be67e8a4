package repositories

import (
	"errors"
	"regexp"
	"strings"

	"gorm.io/gorm"
)

var (
	sqliteUniqueRegex   = regexp.MustCompile(`UNIQUE constraint failed: [\w]+\.([\w]+)`)
	mysqlUniqueRegex    = regexp.MustCompile(`Duplicate entry .* for key '(?:[\w]+\.)?([\w]+)'`)
	postgresUniqueRegex = regexp.MustCompile(`unique constraint "([\w]+)"`)
)

// uniqueFields maps index and column names to the API field they protect
var uniqueFields = map[string]string{
	"email":                       "email",
	"idx_users_email":             "email",
	"license_plate":               "licensePlate",
	"idx_vehicles_license_plate":  "licensePlate",
	"reservation_id":              "reservationId",
	"idx_payments_reservation_id": "reservationId",
	"active_key":                  "reservation",
	"idx_reservations_active_key": "reservation",
	"token_id":                    "tokenId",
	"idx_refresh_tokens_token_id": "tokenId",
}

// IsDuplicateKey reports whether err is a unique constraint violation
func IsDuplicateKey(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") ||
		strings.Contains(msg, "Duplicate entry") ||
		strings.Contains(msg, "duplicate key value")
}

// DuplicateKeyField names the field behind a unique constraint violation
func DuplicateKeyField(err error) string {
	msg := err.Error()
	for _, re := range []*regexp.Regexp{sqliteUniqueRegex, mysqlUniqueRegex, postgresUniqueRegex} {
		if m := re.FindStringSubmatch(msg); len(m) == 2 {
			if field, ok := uniqueFields[m[1]]; ok {
				return field
			}
			return m[1]
		}
	}
	return "field"
}
