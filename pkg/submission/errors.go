package submission

import (
	"errors"
	"fmt"
	"strings"

	"github.com/goliatone/go-formflow/pkg/model"
)

var (
	// ErrInFlight is returned by Submit while another attempt of the same
	// controller is submitting.
	ErrInFlight = errors.New("submission: an attempt is already in flight")
	// ErrNoEndpoint is returned when neither an override nor a category
	// endpoint is configured.
	ErrNoEndpoint = errors.New("submission: no endpoint configured")
	// ErrSurfaceRequired is returned when a controller is built without a
	// presentation surface.
	ErrSurfaceRequired = errors.New("submission: surface is required")
)

// ValidationError reports the fields that blocked a submission.
type ValidationError struct {
	Fields []model.FieldState
}

func (e *ValidationError) Error() string {
	names := make([]string, 0, len(e.Fields))
	for _, field := range e.Fields {
		names = append(names, field.Name)
	}
	return fmt.Sprintf("submission: %d invalid field(s): %s", len(e.Fields), strings.Join(names, ", "))
}
