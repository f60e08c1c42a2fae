package schema

import "errors"

var (
	ErrConnection          = errors.New("database unreachable")
	ErrTableNotFound       = errors.New("table not found")
	ErrUnknownField        = errors.New("unknown field")
	ErrNoPrimaryKey        = errors.New("table has no primary key")
	ErrCompositePrimaryKey = errors.New("table has a composite primary key")
)
