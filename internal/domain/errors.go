package domain

const (
	UploadFailedMessage = "Upload failed"
	DeleteFailedMessage = "Delete failed"
)

// UploadError is returned when the store rejects an upload or cannot be
// reached. Status is 0 for transport failures.
type UploadError struct {
	Message string
	Status  int
	Err     error
}

func (e *UploadError) Error() string {
	if e.Message == "" {
		return UploadFailedMessage
	}
	return e.Message
}

func (e *UploadError) Unwrap() error { return e.Err }

// DeleteError is returned when the store rejects a delete or cannot be
// reached. Status is 0 for transport failures.
type DeleteError struct {
	ID      string
	Message string
	Status  int
	Err     error
}

func (e *DeleteError) Error() string {
	if e.Message == "" {
		return DeleteFailedMessage
	}
	return e.Message
}

func (e *DeleteError) Unwrap() error { return e.Err }
