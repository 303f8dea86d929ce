package db

import (
	"errors"
	"fmt"

	"github.com/mattn/go-sqlite3"
	"gorm.io/gorm"
)

// Repository errors. Constraint errors wrap the driver message.
var (
	// ErrNotFound indicates the requested row does not exist
	ErrNotFound = errors.New("record not found")

	// ErrDuplicate indicates a primary key or unique index collision,
	// e.g. a course or module ID that is already taken
	ErrDuplicate = errors.New("record already exists")

	// ErrForeignKey indicates the parent row is missing, e.g. a module
	// created under an unknown course
	ErrForeignKey = errors.New("referenced record does not exist")
)

// IsNotFound checks if the error is a not found error
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsDuplicate checks if the error is a duplicate key error
func IsDuplicate(err error) bool {
	return errors.Is(err, ErrDuplicate)
}

// IsForeignKey checks if the error is a foreign key violation
func IsForeignKey(err error) bool {
	return errors.Is(err, ErrForeignKey)
}

// MapGormError converts GORM and go-sqlite3 errors into repository errors.
// Errors that are not row or constraint failures are returned unchanged.
func MapGormError(err error) error {
	if err == nil {
		return nil
	}

	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return ErrNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return ErrDuplicate
	case errors.Is(err, gorm.ErrForeignKeyViolated):
		return ErrForeignKey
	}

	// Statements run outside the translator (raw tx callbacks) still carry
	// the driver error.
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) && sqliteErr.Code == sqlite3.ErrConstraint {
		switch sqliteErr.ExtendedCode {
		case sqlite3.ErrConstraintPrimaryKey, sqlite3.ErrConstraintUnique:
			return fmt.Errorf("%w: %s", ErrDuplicate, sqliteErr.Error())
		case sqlite3.ErrConstraintForeignKey:
			return fmt.Errorf("%w: %s", ErrForeignKey, sqliteErr.Error())
		}
	}
	return err
}
