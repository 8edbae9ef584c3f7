package logparse

import (
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strconv"
	"strings"

	"github.com/tprlog/tprlog/pkg/logging"
	"github.com/tprlog/tprlog/pkg/replay"
)

// Extraction errors.
var (
	ErrNoPathMatch  = errors.New("qualifying line has no content path")
	ErrBadByteRange = errors.New("malformed byte range")
)

// Markers identifying lines that belong to the install agent's content
// traffic. Lines missing either marker are not part of the replay.
const (
	methodMarker = "\"GET "
	agentTag     = "Blizzard Agent"
)

// Non-content traffic excluded from replay: version and CDN-info endpoint
// hits, and catalogs product traffic.
var exclusionTokens = []string{"/versions", "/cdns"}

const catalogsSegment = "/catalogs/"

// indexSuffix marks a request for an object's index manifest.
const indexSuffix = ".index"

var (
	// pathPattern matches the distribution path anywhere in the line. The
	// two directory fan-out segments must be exactly two lowercase hex
	// characters; uppercase or malformed hex must not match.
	pathPattern = regexp.MustCompile(`tpr/[^/\s"]+/[^/\s"]+/[0-9a-f]{2}/[0-9a-f]{2}/[0-9a-f]+(\.index)?`)

	rangePattern = regexp.MustCompile(`bytes=([0-9]+)-([0-9]+)`)
)

// LineError is a data-integrity failure on a specific log line. It aborts
// the batch: a qualifying line that cannot be extracted means either a new
// log dialect or a corrupted capture, and a partial replay list is worse
// than none.
type LineError struct {
	LineNumber int    // 1-based position in the batch
	Line       string // offending line content
	Err        error
}

func (e *LineError) Error() string {
	return fmt.Sprintf("line %d: %v: %q", e.LineNumber, e.Err, e.Line)
}

func (e *LineError) Unwrap() error { return e.Err }

// Collaborators supplies the digest and root-folder parse functions, so
// the digest algorithm or folder vocabulary can be swapped without
// touching extraction. Nil fields fall back to the replay package
// implementations.
type Collaborators struct {
	Digest          func(segment string) replay.ContentKey
	ParseRootFolder func(segment string) (replay.RootFolder, error)
}

// Extractor filters raw log lines and extracts structured requests.
type Extractor struct {
	logger          *slog.Logger
	digest          func(string) replay.ContentKey
	parseRootFolder func(string) (replay.RootFolder, error)
}

// New creates an Extractor with the default collaborators. A nil logger
// disables logging.
func New(logger *slog.Logger) *Extractor {
	return NewWithCollaborators(logger, Collaborators{})
}

// NewWithCollaborators creates an Extractor with explicit collaborators.
func NewWithCollaborators(logger *slog.Logger, c Collaborators) *Extractor {
	if logger == nil {
		logger = logging.Nop()
	}
	if c.Digest == nil {
		c.Digest = replay.NewContentKey
	}
	if c.ParseRootFolder == nil {
		c.ParseRootFolder = replay.ParseRootFolder
	}
	return &Extractor{
		logger:          logger,
		digest:          c.Digest,
		parseRootFolder: c.ParseRootFolder,
	}
}

// Parse processes lines in order and returns one request per qualifying
// line, preserving input order. Lines failing the inclusion filter or
// matching an exclusion token are skipped silently. Any data-integrity
// failure aborts the batch with a *LineError naming the line.
func (e *Extractor) Parse(lines []string) ([]replay.Request, error) {
	var requests []replay.Request
	skipped := 0

	for i, line := range lines {
		if !qualifies(line) {
			skipped++
			continue
		}
		if excluded(line) {
			skipped++
			continue
		}

		req, err := e.extract(line)
		if err != nil {
			return nil, &LineError{LineNumber: i + 1, Line: line, Err: err}
		}
		requests = append(requests, req)
	}

	e.logger.Debug("parsed log batch",
		"lines", len(lines),
		"requests", len(requests),
		"skipped", skipped)
	return requests, nil
}

// qualifies applies the inclusion filter: GET method and agent source tag.
func qualifies(line string) bool {
	return strings.Contains(line, methodMarker) && strings.Contains(line, agentTag)
}

// excluded applies the exclusion filter: known non-content endpoints and
// catalogs traffic.
func excluded(line string) bool {
	for _, token := range exclusionTokens {
		if strings.Contains(line, token) {
			return true
		}
	}
	return strings.Contains(line, catalogsSegment)
}

// extract decomposes one qualifying line into a request.
func (e *Extractor) extract(line string) (replay.Request, error) {
	path := pathPattern.FindString(line)
	if path == "" {
		return replay.Request{}, ErrNoPathMatch
	}

	// tpr/<product>/<folder>/<xx>/<yy>/<hex-id>[.index]
	segments := strings.Split(path, "/")
	productRootURI := "tpr/" + segments[1]

	folder, err := e.parseRootFolder(segments[2])
	if err != nil {
		return replay.Request{}, err
	}

	index := strings.HasSuffix(path, indexSuffix)
	hashSegment := strings.TrimSuffix(segments[5], indexSuffix)
	key := e.digest(hashSegment)

	if m := rangePattern.FindStringSubmatch(line); m != nil {
		lower, err := strconv.ParseUint(m[1], 10, 64)
		if err != nil {
			return replay.Request{}, fmt.Errorf("%w: lower bound %q: %v", ErrBadByteRange, m[1], err)
		}
		upper, err := strconv.ParseUint(m[2], 10, 64)
		if err != nil {
			return replay.Request{}, fmt.Errorf("%w: upper bound %q: %v", ErrBadByteRange, m[2], err)
		}
		return replay.NewRangeRequest(productRootURI, folder, key, index, lower, upper), nil
	}

	return replay.NewWholeFileRequest(productRootURI, folder, key, index), nil
}
