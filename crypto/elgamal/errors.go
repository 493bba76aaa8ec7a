package elgamal

import "errors"

var (
	// ErrMalformedCiphertext indicates bytes that do not decode to group elements.
	ErrMalformedCiphertext = errors.New("elgamal: malformed ciphertext")

	// ErrCiphertextExtraction indicates a grouped ciphertext has no handle at the requested index.
	ErrCiphertextExtraction = errors.New("elgamal: ciphertext extraction failed")

	// ErrHandleCount indicates a grouped ciphertext with an unsupported number of handles.
	ErrHandleCount = errors.New("elgamal: unsupported handle count")
)
