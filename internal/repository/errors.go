// Package repository implements store.Store on top of database/sql.  The
// same statements run against MySQL (production) and SQLite (embedded
// runs and tests); only constraint-violation detection differs per driver.
package repository

import (
	"errors"
	"strings"

	"github.com/go-sql-driver/mysql"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

// mysqlDuplicateEntry is ER_DUP_ENTRY.
const mysqlDuplicateEntry = 1062

// isDuplicate reports whether err is a primary-key or unique-constraint
// violation from either supported driver.
func isDuplicate(err error) bool {
	var me *mysql.MySQLError
	if errors.As(err, &me) {
		return me.Number == mysqlDuplicateEntry
	}
	var se *sqlite.Error
	if errors.As(err, &se) {
		switch se.Code() {
		case sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY, sqlite3.SQLITE_CONSTRAINT_UNIQUE:
			return true
		case sqlite3.SQLITE_CONSTRAINT:
			return strings.Contains(se.Error(), "UNIQUE constraint failed")
		}
	}
	return false
}

// violates reports whether a duplicate error names the given constraint or
// column.  MySQL reports the key name, SQLite the column list.
func violates(err error, name string) bool {
	return isDuplicate(err) && strings.Contains(err.Error(), name)
}
