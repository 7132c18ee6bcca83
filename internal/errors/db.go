package errors

import "fmt"

// DBError is the base for database failures. The id identifies the failing
// operation (e.g. "insert_export_history").
type DBError struct {
	Id      string `json:"id"`
	Message string `json:"message"`
}

func NewDBError(id, message string) *DBError {
	return &DBError{Id: id, Message: message}
}

func (e *DBError) Error() string {
	return fmt.Sprintf("DBError [%s]: %s", e.Id, e.Message)
}

type DBInternalError struct {
	DBError
	cause error
}

func NewDBInternalError(id string, cause error) *DBInternalError {
	msg := "internal database error"
	if cause != nil {
		msg = cause.Error()
	}
	return &DBInternalError{DBError: *NewDBError(id, msg), cause: cause}
}

func (e *DBInternalError) Unwrap() error { return e.cause }

type DBNotFoundError struct {
	DBError
}

func NewDBNotFoundError(id, message string) *DBNotFoundError {
	return &DBNotFoundError{DBError: *NewDBError(id, message)}
}

type DBUniqueViolationError struct {
	DBError
	Column string `json:"column"`
}

type DBForeignKeyViolationError struct {
	DBError
	ForeignKeyTable string `json:"foreign_key_table"`
}
