package replay

import (
	"crypto/md5"
	"encoding/hex"
	"errors"
	"fmt"
)

// Domain errors.
var (
	ErrUnknownRootFolder = errors.New("unknown root folder")
	ErrInvalidRequest    = errors.New("invalid request")
	ErrBadContentKey     = errors.New("malformed content key")
)

// RootFolder classifies the storage namespace a request targets.
type RootFolder string

const (
	RootFolderData   RootFolder = "data"
	RootFolderConfig RootFolder = "config"
	RootFolderPatch  RootFolder = "patch"
)

// ParseRootFolder parses a path segment into a RootFolder.
// The vocabulary is fixed; anything else is an error.
func ParseRootFolder(segment string) (RootFolder, error) {
	switch RootFolder(segment) {
	case RootFolderData, RootFolderConfig, RootFolderPatch:
		return RootFolder(segment), nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownRootFolder, segment)
	}
}

// IsValid checks if the root folder is one of the known vocabulary values.
func (f RootFolder) IsValid() bool {
	switch f {
	case RootFolderData, RootFolderConfig, RootFolderPatch:
		return true
	default:
		return false
	}
}

// ContentKeySize is the width of a content key in bytes.
const ContentKeySize = md5.Size

// ContentKey is a fixed-width identifier for a content object, derived
// from the object's path segment by one-way hashing.
type ContentKey [ContentKeySize]byte

// NewContentKey digests a path segment into a ContentKey.
func NewContentKey(segment string) ContentKey {
	return md5.Sum([]byte(segment))
}

// String returns the key as lowercase hex.
func (k ContentKey) String() string {
	return hex.EncodeToString(k[:])
}

// MarshalText encodes the key as lowercase hex.
func (k ContentKey) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// UnmarshalText decodes a hex-encoded key.
func (k *ContentKey) UnmarshalText(text []byte) error {
	decoded, err := hex.DecodeString(string(text))
	if err != nil {
		return fmt.Errorf("%w: %v", ErrBadContentKey, err)
	}
	if len(decoded) != ContentKeySize {
		return fmt.Errorf("%w: got %d bytes, want %d", ErrBadContentKey, len(decoded), ContentKeySize)
	}
	copy(k[:], decoded)
	return nil
}

// Request is a single content request reconstructed from an access log.
// Exactly one of {byte range present, WholeFile} holds.
type Request struct {
	// ProductRootURI identifies the content root, e.g. "tpr/sc1live".
	ProductRootURI string `json:"productRootUri"`

	// RootFolder is the storage namespace within the product root.
	RootFolder RootFolder `json:"rootFolder"`

	// ContentKey identifies the requested object.
	ContentKey ContentKey `json:"contentKey"`

	// Index is true when the request targets the object's index manifest
	// rather than the content itself.
	Index bool `json:"index"`

	// ByteLower and ByteUpper bound the requested range (inclusive).
	// They are present together or absent together.
	ByteLower *uint64 `json:"byteLower,omitempty"`
	ByteUpper *uint64 `json:"byteUpper,omitempty"`

	// WholeFile is true exactly when no byte range was requested.
	WholeFile bool `json:"wholeFile"`
}

// Key identifies the logical object a request addresses. Requests with
// equal keys are merged by Coalesce.
type Key struct {
	ProductRootURI string     `json:"productRootUri"`
	RootFolder     RootFolder `json:"rootFolder"`
	ContentKey     ContentKey `json:"contentKey"`
	Index          bool       `json:"index"`
}

// NewWholeFileRequest builds a request for the entire object.
func NewWholeFileRequest(productRootURI string, folder RootFolder, key ContentKey, index bool) Request {
	return Request{
		ProductRootURI: productRootURI,
		RootFolder:     folder,
		ContentKey:     key,
		Index:          index,
		WholeFile:      true,
	}
}

// NewRangeRequest builds a request for an inclusive byte range of an object.
func NewRangeRequest(productRootURI string, folder RootFolder, key ContentKey, index bool, lower, upper uint64) Request {
	return Request{
		ProductRootURI: productRootURI,
		RootFolder:     folder,
		ContentKey:     key,
		Index:          index,
		ByteLower:      &lower,
		ByteUpper:      &upper,
	}
}

// Key returns the request's grouping key.
func (r Request) Key() Key {
	return Key{
		ProductRootURI: r.ProductRootURI,
		RootFolder:     r.RootFolder,
		ContentKey:     r.ContentKey,
		Index:          r.Index,
	}
}

// Validate checks the range/whole-file invariant.
func (r Request) Validate() error {
	hasLower := r.ByteLower != nil
	hasUpper := r.ByteUpper != nil
	if hasLower != hasUpper {
		return fmt.Errorf("%w: byte range bounds must be present together", ErrInvalidRequest)
	}
	if r.WholeFile == hasLower {
		return fmt.Errorf("%w: exactly one of byte range and whole-file must hold", ErrInvalidRequest)
	}
	if !r.RootFolder.IsValid() {
		return fmt.Errorf("%w: %q is not a root folder", ErrInvalidRequest, r.RootFolder)
	}
	return nil
}

// CoveredBytes returns the number of bytes the request covers and whether
// that count is known. Whole-file requests cover an amount unknown without
// the object's size, so ok is false for them.
func (r Request) CoveredBytes() (n uint64, ok bool) {
	if r.WholeFile || r.ByteLower == nil || r.ByteUpper == nil {
		return 0, false
	}
	if *r.ByteUpper < *r.ByteLower {
		return 0, false
	}
	return *r.ByteUpper - *r.ByteLower + 1, true
}
