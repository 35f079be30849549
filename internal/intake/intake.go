// Package intake turns voice recordings and receipt photos into
// transaction pre-fills. Everything it produces is a suggestion only;
// the ledger re-validates on submission.
package intake

import "errors"

var (
	// ErrTranscription means the audio could not be turned into text.
	ErrTranscription = errors.New("could not transcribe audio")
	// ErrExtraction means no transaction could be read out of the input.
	ErrExtraction = errors.New("could not extract transaction details")
	// ErrUnsupportedMedia means the upload is not an accepted format.
	ErrUnsupportedMedia = errors.New("unsupported media type")
)
