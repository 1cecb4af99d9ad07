package domain

import "go.trai.ch/zerr"

var (
	// ErrParse is returned when a directive body cannot be tokenized.
	ErrParse = zerr.New("malformed directive")

	// ErrUnknownOption is returned when a directive names an option its kind does not accept.
	ErrUnknownOption = zerr.New("unknown option")

	// ErrValidation is returned when an option value has the wrong type or an illegal value.
	ErrValidation = zerr.New("invalid option value")

	// ErrResolution is returned when a target matches no file or points at something that is not a file.
	ErrResolution = zerr.New("could not resolve include target")

	// ErrCircularInclude is returned when an include chain revisits a file or URL already being expanded.
	ErrCircularInclude = zerr.New("circular include")

	// ErrNestingTooDeep is returned when includes nest deeper than the configured limit.
	ErrNestingTooDeep = zerr.New("includes nested too deeply")

	// ErrDecode is returned when content cannot be decoded with the requested encoding.
	ErrDecode = zerr.New("failed to decode content")

	// ErrFetch is returned when a remote include cannot be downloaded.
	ErrFetch = zerr.New("failed to fetch remote content")

	// ErrCache is returned when the remote content cache cannot be read or written.
	ErrCache = zerr.New("remote content cache failure")

	// ErrReadFailed is returned when a local include cannot be read.
	ErrReadFailed = zerr.New("failed to read file")

	// ErrWriteFailed is returned when an expanded document cannot be written.
	ErrWriteFailed = zerr.New("failed to write expanded document")

	// ErrConfigReadFailed is returned when the config file cannot be read.
	ErrConfigReadFailed = zerr.New("failed to read config file")

	// ErrConfigParseFailed is returned when the config file cannot be parsed.
	ErrConfigParseFailed = zerr.New("failed to parse config file")

	// ErrConfigInvalid is returned when the config file parses but holds illegal values.
	ErrConfigInvalid = zerr.New("invalid configuration")

	// ErrDocsDirNotFound is returned when the documents directory does not exist.
	ErrDocsDirNotFound = zerr.New("documents directory not found")

	// ErrNoInput is returned when expand has neither a file nor piped input.
	ErrNoInput = zerr.New("no input document")

	// ErrExpansionFailed is returned when at least one document failed to expand.
	ErrExpansionFailed = zerr.New("expansion failed")
)
