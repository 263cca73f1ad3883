package ingest

import (
	"encoding/json"
	"fmt"

	"github.com/kbukum/tabkit/bus"
	apperrors "github.com/kbukum/tabkit/errors"
	"github.com/kbukum/tabkit/record"
)

// DispatchError rejects a request's future. It is also the payload of the
// request's error notification.
type DispatchError struct {
	Err     error
	Setting Setting
	// Index is the position in the batch, or -1 for a single dispatch.
	Index int
}

func (e *DispatchError) Error() string {
	if e.Index >= 0 {
		return fmt.Sprintf("ingest request %d: %v", e.Index, e.Err)
	}
	return fmt.Sprintf("ingest request: %v", e.Err)
}

func (e *DispatchError) Unwrap() error { return e.Err }

// Code returns the error code of the wrapped AppError, if any.
func (e *DispatchError) Code() apperrors.ErrorCode {
	if appErr, ok := apperrors.AsAppError(e.Err); ok {
		return appErr.Code
	}
	return apperrors.ErrCodeInternal
}

// MarshalJSON renders {"error": ..., "setting": ..., "index": ...}. Index is
// omitted for single dispatches. Non-finite numbers in the inline data and
// the filter value become null, and inline data that still cannot be
// marshaled is replaced by its type name.
func (e *DispatchError) MarshalJSON() ([]byte, error) {
	setting := e.Setting
	if setting.Data != nil {
		setting.Data = bus.Sanitize(setting.Data)
		if _, err := json.Marshal(setting.Data); err != nil {
			setting.Data = fmt.Sprintf("<%T>", e.Setting.Data)
		}
	}
	if setting.Filter != nil {
		setting.Filter = &record.Match{Field: setting.Filter.Field, Value: bus.Sanitize(setting.Filter.Value)}
	}
	out := struct {
		Error   *apperrors.AppError `json:"error"`
		Setting Setting             `json:"setting"`
		Index   *int                `json:"index,omitempty"`
	}{
		Error:   apperrors.Wrap(e.Err),
		Setting: setting,
	}
	if e.Index >= 0 {
		out.Index = &e.Index
	}
	return json.Marshal(out)
}
