package errors

import (
	"fmt"
	"net/http"
)

// Persistent store errors

func StorageIO(operation string, cause error) *AppError {
	return New(ErrTypeStorage, fmt.Sprintf("storage operation failed: %s", operation), cause, http.StatusInternalServerError).WithStack()
}

func StorageOpenFailed(path string, cause error) *AppError {
	return New(ErrTypeStorage, fmt.Sprintf("failed to open store: %s", path), cause, http.StatusInternalServerError).WithStack()
}

func StorageClosed() *AppError {
	return New(ErrTypeStorage, "store is closed", nil, http.StatusServiceUnavailable).WithStack()
}

// Media index errors

func IndexQueryFailed(cause error) *AppError {
	return New(ErrTypeMediaIndex, "media index query failed", cause, http.StatusInternalServerError).WithStack()
}

func IndexProbeFailed(path string, cause error) *AppError {
	return New(ErrTypeMediaIndex, fmt.Sprintf("failed to probe media file: %s", path), cause, http.StatusInternalServerError).WithStack()
}

func IndexWriteFailed(path string, cause error) *AppError {
	return New(ErrTypeMediaIndex, fmt.Sprintf("failed to write into media library: %s", path), cause, http.StatusInternalServerError).WithStack()
}

// Permission errors. Permission absence is expected state; the 403 code is
// only used when the condition leaks out through the HTTP boundary.

func PermissionDenied(state string) *AppError {
	return New(ErrTypePermission, fmt.Sprintf("media read permission not granted: %s", state), nil, http.StatusForbidden).WithStack()
}

// Domain lookups

func AlbumNotFound(albumID int64) *AppError {
	return New(ErrTypeNotFound, fmt.Sprintf("album not found: %d", albumID), nil, http.StatusNotFound).WithStack()
}

func MediaNotFound(mediaID int64) *AppError {
	return New(ErrTypeNotFound, fmt.Sprintf("media item not found: %d", mediaID), nil, http.StatusNotFound).WithStack()
}

func AlbumNameEmpty() *AppError {
	return New(ErrTypeInvalidArg, "album name must not be empty", nil, http.StatusBadRequest).WithStack()
}
