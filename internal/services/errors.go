package services

import "errors"

// ErrTemplateNotFound is a referential integrity failure at submit time:
// the named template does not exist. Fatal to that submission.
var ErrTemplateNotFound = errors.New("template not found")

// ErrNoData is the sentinel for an export with zero submissions. Not an error
// condition for callers; there is simply nothing to export.
var ErrNoData = errors.New("no data")
