package objects

import "errors"

// Parse errors. All of them are permanent: the input bytes are not a valid
// Git object and re-reading them yields the same failure.
var (
	ErrInvalidOidLength        = errors.New("invalid object id length")
	ErrInvalidHexLength        = errors.New("invalid object id hex length")
	ErrInvalidHexDigit         = errors.New("invalid hex digit in object id")
	ErrMalformedTreeEntry      = errors.New("malformed tree entry")
	ErrUnknownFileMode         = errors.New("unknown file mode")
	ErrMissingMessageSeparator = errors.New("commit has no blank line before message")
	ErrMissingAuthor           = errors.New("commit has no author")
	ErrMissingCommitter        = errors.New("commit has no committer")
	ErrMissingTree             = errors.New("commit has no tree")
	ErrMalformedAuthorLine     = errors.New("malformed author line")
	ErrInvalidObjectType       = errors.New("invalid object type")
)
