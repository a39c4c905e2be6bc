package domain

// DuplicateError reports a uniqueness violation on a named field, e.g. a
// registration reusing an existing username or email.
type DuplicateError struct {
	Field string
}

func (e *DuplicateError) Error() string {
	return "duplicate " + e.Field
}
