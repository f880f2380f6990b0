package service

import "errors"

var (
	// ErrLoadFailed wraps any backend failure while reading an invoice or list
	ErrLoadFailed = errors.New("failed to load")

	// ErrSaveFailed wraps any failure of the save sequence; nothing was committed
	ErrSaveFailed = errors.New("failed to save")

	// ErrSettingsMissing means the company profile row has not been provisioned
	ErrSettingsMissing = errors.New("company settings have not been set up")
)
