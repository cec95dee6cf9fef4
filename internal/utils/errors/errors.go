package errors

import (
	"errors"
)

var (
	// General Errors
	ErrInvalidArgument   = errors.New("invalid argument")
	ErrUnsupportedFile   = errors.New("unsupported file format")
	ErrPathNotAccessible = errors.New("path is not accessible")

	// Compound File Errors
	ErrNotCompoundFile = errors.New("not a compound file")
	ErrStorageRead     = errors.New("error reading compound file storage")

	// Archive Errors
	ErrUnsupportedArchive = errors.New("unsupported archive format")
	ErrCompressionFailed  = errors.New("compression failed")

	// Export Errors
	ErrUnsupportedFormat = errors.New("unsupported output format")
	ErrNoPayload         = errors.New("attachment has no payload")
	ErrMIMEBuildFailed   = errors.New("failed to build MIME message")

	// RTF Errors
	ErrRTFHeader       = errors.New("invalid compressed RTF header")
	ErrRTFChecksum     = errors.New("compressed RTF checksum mismatch")
	ErrRTFUnknownMagic = errors.New("unknown compressed RTF signature")

	// File & Directory Errors
	ErrFileNotFound    = errors.New("file not found")
	ErrFileReadError   = errors.New("error reading file")
	ErrFileWriteError  = errors.New("error writing to file")
	ErrFileExistsError = errors.New("file already exists")

	// VirusTotal API Errors
	ErrAPIKeyMissing         = errors.New("API key is required")
	ErrAPIRateLimitExceeded  = errors.New("API rate limit exceeded")
	ErrAPICommunicationError = errors.New("error communicating with VirusTotal API")
	ErrResourceNotFound      = errors.New("requested resource not found")

	// Configuration Errors
	ErrConfigInvalid      = errors.New("invalid configuration")
	ErrConfigFileNotFound = errors.New("configuration file not found")
	ErrConfigParseError   = errors.New("error parsing configuration")
)
