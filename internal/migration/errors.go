package migration

import "errors"

// ErrMalformedFilename indicates a file name does not follow the
// V{version}__{description}.sql naming convention.
var ErrMalformedFilename = errors.New("malformed migration filename")

// ErrUnknownPolicy indicates an unrecognized checksum policy name.
var ErrUnknownPolicy = errors.New("unknown checksum policy")
