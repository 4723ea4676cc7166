package forensics

import "fmt"

// Kind enumerates the closed set of error categories an analyzer or
// detector can fail with. See spec §7.
type Kind int

const (
	// KindImageDecode wraps a failure from the external image decoder.
	KindImageDecode Kind = iota + 1
	// KindIO covers file-not-found / permission failures.
	KindIO
	// KindInvalidParameter marks configuration outside its documented range.
	KindInvalidParameter
	// KindImageTooSmall marks an image smaller than an analyzer's minimum dimension.
	KindImageTooSmall
	// KindUnsupportedFormat marks a decoded image whose pixel layout the analyzer can't use.
	KindUnsupportedFormat
	// KindMetadataError wraps an EXIF subsystem failure.
	KindMetadataError
	// KindAnalysisFailed marks an internal numeric degeneracy (empty patch set, singular covariance, ...).
	KindAnalysisFailed
)

func (k Kind) String() string {
	switch k {
	case KindImageDecode:
		return "ImageDecode"
	case KindIO:
		return "Io"
	case KindInvalidParameter:
		return "InvalidParameter"
	case KindImageTooSmall:
		return "ImageTooSmall"
	case KindUnsupportedFormat:
		return "UnsupportedFormat"
	case KindMetadataError:
		return "MetadataError"
	case KindAnalysisFailed:
		return "AnalysisFailed"
	default:
		return "Unknown"
	}
}

// Error is the single error type every analyzer and detector returns.
// It carries a closed Kind plus a message and, for ImageTooSmall, the
// minimum dimension the caller's image failed to meet.
type Error struct {
	Kind   Kind
	Msg    string
	MinDim int
	Inner  error
}

func (e *Error) Error() string {
	if e.Kind == KindImageTooSmall {
		return fmt.Sprintf("%s: minimum dimension %d", e.Kind, e.MinDim)
	}
	if e.Inner != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Msg, e.Inner)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Msg)
}

func (e *Error) Unwrap() error { return e.Inner }

// ErrImageTooSmall builds the ImageTooSmall error for an analyzer whose
// minimum usable dimension is minDim.
func ErrImageTooSmall(minDim int) *Error {
	return &Error{Kind: KindImageTooSmall, MinDim: minDim}
}

// ErrInvalidParameter builds an InvalidParameter error.
func ErrInvalidParameter(msg string) *Error {
	return &Error{Kind: KindInvalidParameter, Msg: msg}
}

// ErrImageDecode wraps a decoder failure.
func ErrImageDecode(inner error) *Error {
	return &Error{Kind: KindImageDecode, Msg: "decode failed", Inner: inner}
}

// ErrIO wraps a filesystem failure.
func ErrIO(msg string, inner error) *Error {
	return &Error{Kind: KindIO, Msg: msg, Inner: inner}
}

// ErrUnsupportedFormat marks a pixel layout the analyzer can't consume.
func ErrUnsupportedFormat(msg string) *Error {
	return &Error{Kind: KindUnsupportedFormat, Msg: msg}
}

// ErrMetadata wraps an EXIF subsystem failure.
func ErrMetadata(msg string, inner error) *Error {
	return &Error{Kind: KindMetadataError, Msg: msg, Inner: inner}
}

// ErrAnalysisFailed marks an internal numeric degeneracy.
func ErrAnalysisFailed(msg string) *Error {
	return &Error{Kind: KindAnalysisFailed, Msg: msg}
}

// IsKind reports whether err is a *Error of the given kind.
func IsKind(err error, k Kind) bool {
	var fe *Error
	if e, ok := err.(*Error); ok {
		fe = e
	} else {
		return false
	}
	return fe.Kind == k
}
