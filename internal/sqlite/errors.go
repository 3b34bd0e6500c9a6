package sqlite

import (
	"errors"
	"strings"

	driver "modernc.org/sqlite"
	sqlitelib "modernc.org/sqlite/lib"
)

// constraint names the rule a rejected write broke.
type constraint int

const (
	constraintNone constraint = iota
	constraintUnique
	constraintForeignKey
	constraintCheck
)

// extended result codes per constraint, and the message fragment the driver
// uses when only the primary code is available
var constraintCodes = map[constraint]struct {
	codes []int
	text  string
}{
	constraintUnique: {
		codes: []int{sqlitelib.SQLITE_CONSTRAINT_UNIQUE, sqlitelib.SQLITE_CONSTRAINT_PRIMARYKEY},
		text:  "UNIQUE constraint failed",
	},
	constraintForeignKey: {
		codes: []int{sqlitelib.SQLITE_CONSTRAINT_FOREIGNKEY},
		text:  "FOREIGN KEY constraint failed",
	},
	constraintCheck: {
		codes: []int{sqlitelib.SQLITE_CONSTRAINT_CHECK},
		text:  "CHECK constraint failed",
	},
}

// violated reports which constraint err broke, if any.
func violated(err error) constraint {
	if err == nil {
		return constraintNone
	}
	var dbErr *driver.Error
	hasCode := errors.As(err, &dbErr)
	for kind, c := range constraintCodes {
		if hasCode {
			for _, code := range c.codes {
				if dbErr.Code() == code {
					return kind
				}
			}
		}
		if strings.Contains(err.Error(), c.text) {
			return kind
		}
	}
	return constraintNone
}

// a session id or project id that is already taken
func isUniqueViolation(err error) bool { return violated(err) == constraintUnique }

// a chat message for a session that does not exist
func isForeignKeyViolation(err error) bool { return violated(err) == constraintForeignKey }

// a project platform or status outside the schema's enumerations
func isCheckViolation(err error) bool { return violated(err) == constraintCheck }
