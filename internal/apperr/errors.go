package apperr

import "errors"

var (
	ErrFolderMissing = errors.New("folder does not exist")
	ErrOutsideRoot   = errors.New("path escapes library root")
)
