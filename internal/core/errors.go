package core

import "errors"

var (
	// ErrStoreUnavailable means the content store backend could not be
	// reached at all.
	ErrStoreUnavailable = errors.New("content store unavailable")

	// ErrUploadRejected means the content store answered but refused the
	// upload.
	ErrUploadRejected = errors.New("content store rejected upload")

	// ErrNotFound covers missing content as well as missing remote
	// profiles and posts.
	ErrNotFound = errors.New("not found")

	// ErrAuthExpired means a remote call was rejected because of a stale
	// credential. Distinct from a transport failure so callers know a
	// token refresh is warranted.
	ErrAuthExpired = errors.New("remote credential expired")

	// ErrMalformedRemoteData means a remote response was missing a
	// required field or carried an unparseable timestamp.
	ErrMalformedRemoteData = errors.New("malformed remote data")

	// ErrNotImplemented marks documented gaps, such as webhook signature
	// verification.
	ErrNotImplemented = errors.New("not implemented")
)
