package db

import "fmt"

// Common errors
var (
	ErrInvalidInput       = fmt.Errorf("invalid input")
	ErrDatabaseConnection = fmt.Errorf("database connection error")
	ErrSchemaSetup        = fmt.Errorf("schema setup failed")
	ErrCorruptEntry       = fmt.Errorf("corrupt cache entry")
)
