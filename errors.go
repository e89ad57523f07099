package g2p

import "errors"

// Sentinel errors for conditions callers may need to handle differently.
var (
	// ErrModelNotFound indicates the model file does not exist.
	ErrModelNotFound = errors.New("g2p: model file not found")

	// ErrInvalidModel indicates the model file exists but cannot be loaded.
	ErrInvalidModel = errors.New("g2p: invalid model format")

	// ErrVocabularyFailed indicates the symbol vocabulary could not be loaded.
	ErrVocabularyFailed = errors.New("g2p: vocabulary initialization failed")

	// ErrSourceUnreadable indicates the input could not be opened or read.
	ErrSourceUnreadable = errors.New("g2p: input source unreadable")

	// ErrUnknownEncoding indicates an unsupported character encoding name.
	ErrUnknownEncoding = errors.New("g2p: unknown character encoding")

	// ErrInvalidOption indicates a Converter was configured inconsistently.
	ErrInvalidOption = errors.New("g2p: invalid option")
)
