package objects

import (
	"bytes"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/KostasZigo/gitobj/internal/constants"
	"go.uber.org/multierr"
)

// ErrDuplicateHeader is returned when a single-valued commit header repeats.
var ErrDuplicateHeader = errors.New("duplicate commit header")

var (
	messageSeparator     = []byte("\n\n")
	signatureIndent      = []byte("\n ")
	signatureLineBreak   = []byte("\n")
	errInvalidAuthorText = errors.New("identity contains newline or NUL")
)

// CommitFields is the structured content of a commit object.
type CommitFields struct {
	Tree      Oid
	Parents   []Oid // order is significant for merges
	Author    Author
	Committer Author
	// Message is kept as raw bytes; it is usually UTF-8 but not required to be.
	Message []byte
	// GPGSignature is nil for unsigned commits.
	GPGSignature []byte
}

// Dependencies returns the parents followed by the tree.
func (f CommitFields) Dependencies() []Oid {
	deps := make([]Oid, 0, len(f.Parents)+1)
	deps = append(deps, f.Parents...)
	return append(deps, f.Tree)
}

func (f CommitFields) clone() CommitFields {
	f.Parents = slices.Clone(f.Parents)
	f.Message = cloneBytes(f.Message)
	f.GPGSignature = cloneBytes(f.GPGSignature)
	return f
}

// Represents a snapshot of the repository
type Commit struct {
	fields CommitFields
	body   []byte
	oid    Oid
}

// NewCommit serializes fields into a commit object.
// Identities must be single-line and carry a valid timezone.
func NewCommit(fields CommitFields) (*Commit, error) {
	if err := validateIdentity(constants.CommitAuthorKey, fields.Author); err != nil {
		return nil, err
	}
	if err := validateIdentity(constants.CommitCommitterKey, fields.Committer); err != nil {
		return nil, err
	}

	fields = fields.clone()
	body := BuildCommitBody(fields)

	return &Commit{
		fields: fields,
		body:   body,
		oid:    ComputeOid(CommitObjectType, body),
	}, nil
}

// NewInitialCommit creates a commit without parents.
func NewInitialCommit(tree Oid, message []byte, author, committer Author) (*Commit, error) {
	return NewCommit(CommitFields{
		Tree:      tree,
		Author:    author,
		Committer: committer,
		Message:   message,
	})
}

func validateIdentity(key string, a Author) error {
	if strings.ContainsAny(a.NameAndEmail, "\n\x00") {
		return fmt.Errorf("%w: %s: %w", ErrMalformedAuthorLine, key, errInvalidAuthorText)
	}
	if _, err := ParseAuthor(a.GitFormat()); err != nil {
		return fmt.Errorf("%s: %w", key, err)
	}
	return nil
}

// ParseCommit decodes a commit body. The input bytes are kept verbatim, so
// headers this package does not model (encoding, mergetag, ...) survive.
func ParseCommit(body []byte) (*Commit, error) {
	fields, err := ParseCommitBody(body)
	if err != nil {
		return nil, err
	}

	body = cloneBytes(body)
	return &Commit{
		fields: fields,
		body:   body,
		oid:    ComputeOid(CommitObjectType, body),
	}, nil
}

// ParseCommitBody extracts the structured fields of a commit body.
func ParseCommitBody(body []byte) (CommitFields, error) {
	var fields CommitFields

	header, message, found := bytes.Cut(body, messageSeparator)
	if !found {
		return fields, ErrMissingMessageSeparator
	}
	fields.Message = cloneBytes(message)

	var seenTree, seenAuthor, seenCommitter, seenSignature bool
	for _, line := range splitHeaderLines(header) {
		key, value := cutHeaderLine(line)

		switch key {
		case constants.CommitTreeKey:
			if seenTree {
				return fields, fmt.Errorf("%w: %s", ErrDuplicateHeader, key)
			}
			oid, err := ParseOid(string(value))
			if err != nil {
				return fields, fmt.Errorf("commit %s: %w", key, err)
			}
			fields.Tree, seenTree = oid, true

		case constants.CommitParentKey:
			oid, err := ParseOid(string(value))
			if err != nil {
				return fields, fmt.Errorf("commit %s: %w", key, err)
			}
			fields.Parents = append(fields.Parents, oid)

		case constants.CommitAuthorKey, constants.CommitCommitterKey:
			if (key == constants.CommitAuthorKey && seenAuthor) || (key == constants.CommitCommitterKey && seenCommitter) {
				return fields, fmt.Errorf("%w: %s", ErrDuplicateHeader, key)
			}
			author, err := ParseAuthor(string(value))
			if err != nil {
				return fields, fmt.Errorf("commit %s: %w", key, err)
			}
			if key == constants.CommitAuthorKey {
				fields.Author, seenAuthor = author, true
			} else {
				fields.Committer, seenCommitter = author, true
			}

		case constants.CommitGPGSigKey:
			if seenSignature {
				return fields, fmt.Errorf("%w: %s", ErrDuplicateHeader, key)
			}
			fields.GPGSignature = bytes.ReplaceAll(value, signatureIndent, signatureLineBreak)
			if fields.GPGSignature == nil {
				fields.GPGSignature = []byte{}
			}
			seenSignature = true

		default:
			// encoding, mergetag and other headers are not modelled.
		}
	}

	var err error
	if !seenTree {
		err = multierr.Append(err, ErrMissingTree)
	}
	if !seenAuthor {
		err = multierr.Append(err, ErrMissingAuthor)
	}
	if !seenCommitter {
		err = multierr.Append(err, ErrMissingCommitter)
	}
	if err != nil {
		return CommitFields{}, err
	}

	return fields, nil
}

// splitHeaderLines splits on every newline that is not followed by a space.
// A newline followed by a space continues the previous header (gpgsig).
func splitHeaderLines(header []byte) [][]byte {
	var lines [][]byte
	start := 0
	for i := 0; i < len(header); i++ {
		if header[i] != constants.NewlineByte {
			continue
		}
		if i+1 < len(header) && header[i+1] == constants.SpaceByte {
			continue
		}
		lines = append(lines, header[start:i])
		start = i + 1
	}
	return append(lines, header[start:])
}

func cutHeaderLine(line []byte) (string, []byte) {
	key, value, _ := bytes.Cut(line, []byte{constants.SpaceByte})
	return string(key), value
}

// BuildCommitBody creates the raw commit content:
//
//	tree <hex>
//	parent <hex>          (zero or more, caller order)
//	author <identity> <ts> <tz>
//	committer <identity> <ts> <tz>
//	gpgsig <line 1>       (optional)
//	 <line 2..n>
//
//	<message bytes, verbatim>
func BuildCommitBody(fields CommitFields) []byte {
	var buf bytes.Buffer

	fmt.Fprintf(&buf, "%s %s\n", constants.CommitTreeKey, fields.Tree)

	for _, parent := range fields.Parents {
		fmt.Fprintf(&buf, "%s %s\n", constants.CommitParentKey, parent)
	}

	fmt.Fprintf(&buf, "%s %s\n", constants.CommitAuthorKey, fields.Author.GitFormat())
	fmt.Fprintf(&buf, "%s %s\n", constants.CommitCommitterKey, fields.Committer.GitFormat())

	if fields.GPGSignature != nil {
		buf.WriteString(constants.CommitGPGSigKey)
		buf.WriteByte(constants.SpaceByte)
		buf.Write(bytes.ReplaceAll(fields.GPGSignature, signatureLineBreak, signatureIndent))
		buf.WriteByte(constants.NewlineByte)
	}

	// Blank line before message
	buf.WriteByte(constants.NewlineByte)

	// Message is written as-is, no trailing newline is added.
	buf.Write(fields.Message)

	return buf.Bytes()
}

func (c *Commit) Type() ObjectType {
	return CommitObjectType
}

func (c *Commit) Oid() Oid {
	return c.oid
}

func (c *Commit) Body() []byte {
	return cloneBytes(c.body)
}

func (c *Commit) Size() int {
	return len(c.body)
}

func (c *Commit) Data() []byte {
	return envelope(CommitObjectType, c.body)
}

// Fields returns a copy of the structured content.
func (c *Commit) Fields() CommitFields {
	return c.fields.clone()
}

func (c *Commit) Tree() Oid {
	return c.fields.Tree
}

func (c *Commit) Parents() []Oid {
	return slices.Clone(c.fields.Parents)
}

func (c *Commit) Author() Author {
	return c.fields.Author
}

func (c *Commit) Committer() Author {
	return c.fields.Committer
}

func (c *Commit) Message() []byte {
	return cloneBytes(c.fields.Message)
}

func (c *Commit) GPGSignature() []byte {
	return cloneBytes(c.fields.GPGSignature)
}

func (c *Commit) IsSigned() bool {
	return c.fields.GPGSignature != nil
}

func (c *Commit) IsInitialCommit() bool {
	return len(c.fields.Parents) == 0
}

func (c *Commit) Dependencies() []Oid {
	return c.fields.Dependencies()
}

// SigningPayload returns the body with the gpgsig header removed: the
// bytes a commit signature is computed over.
func (c *Commit) SigningPayload() []byte {
	header, message, _ := bytes.Cut(c.body, messageSeparator)

	var buf bytes.Buffer
	for _, line := range splitHeaderLines(header) {
		if key, _ := cutHeaderLine(line); key == constants.CommitGPGSigKey {
			continue
		}
		buf.Write(line)
		buf.WriteByte(constants.NewlineByte)
	}
	buf.WriteByte(constants.NewlineByte)
	buf.Write(message)

	return buf.Bytes()
}

func (c *Commit) sealed() {}

func (c *Commit) String() string {
	return fmt.Sprintf("Commit{oid: %s, tree: %s, parents: %d, author: %s, message: %q}",
		c.oid, c.fields.Tree, len(c.fields.Parents), c.fields.Author, c.fields.Message)
}
