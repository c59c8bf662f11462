package domain

import (
	"errors"
	"fmt"
)

// ErrPreconditionFailed is the parent of every error that means "the data needed for a report
// is not there". errors.Is(err, ErrPreconditionFailed) holds for all three of its children.
var ErrPreconditionFailed = errors.New("precondition failed")

var (
	ErrNotConfigured = fmt.Errorf("%w: report configuration not found", ErrPreconditionFailed)
	ErrNoWorkRecords = fmt.Errorf("%w: no work records for period", ErrPreconditionFailed)
	ErrNotFound      = fmt.Errorf("%w: not found", ErrPreconditionFailed)
)

var (
	ErrInvalidArgument     = errors.New("invalid argument")
	ErrAuthorizationDenied = errors.New("authorization denied")
	ErrTemplateMalformed   = errors.New("template malformed")
	ErrRenderFailed        = errors.New("render failed")
	ErrStorageUploadFailed = errors.New("storage upload failed")
	ErrMetadataWriteFailed = errors.New("metadata write failed")
	ErrLocalDeliveryFailed = errors.New("local delivery failed")
)

// ErrorKind names the failure class of err, most specific first. It returns "internal" for
// errors outside the report taxonomy.
func ErrorKind(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, ErrNotConfigured):
		return "not_configured"
	case errors.Is(err, ErrNoWorkRecords):
		return "no_work_records"
	case errors.Is(err, ErrNotFound):
		return "not_found"
	case errors.Is(err, ErrInvalidArgument):
		return "invalid_argument"
	case errors.Is(err, ErrAuthorizationDenied):
		return "authorization_denied"
	case errors.Is(err, ErrTemplateMalformed):
		return "template_malformed"
	case errors.Is(err, ErrRenderFailed):
		return "render_failed"
	case errors.Is(err, ErrStorageUploadFailed):
		return "storage_upload_failed"
	case errors.Is(err, ErrMetadataWriteFailed):
		return "metadata_write_failed"
	case errors.Is(err, ErrLocalDeliveryFailed):
		return "local_delivery_failed"
	default:
		return "internal"
	}
}
