package wizard

import "errors"

// Validation errors for the interactive wizard.
var (
	errDiskInvalid   = errors.New("disk size must be a whole number of GiB, at least 1")
	errMemoryInvalid = errors.New("memory must be a whole number of MiB, at least 16")
	errIDInvalid     = errors.New("container ID must be a whole number, at least 100")
	errNoPools       = errors.New("no storage pool is available for the root filesystem")
)
