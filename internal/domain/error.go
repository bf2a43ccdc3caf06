package domain

import "errors"

var (
	// Common domain errors
	ErrNotFound        = errors.New("entity not found")
	ErrAlreadyExists   = errors.New("entity already exists")
	ErrInvalidArgument = errors.New("invalid argument")

	// Voucher lifecycle
	ErrAlreadyRedeemed    = errors.New("voucher already redeemed")
	ErrVoucherExpired     = errors.New("voucher has expired")
	ErrWrongPartner       = errors.New("voucher is not valid for this partner")
	ErrUnauthorized       = errors.New("unauthorized access to voucher")
	ErrPartnerNotFound    = errors.New("partner not found")
	ErrPartnerInactive    = errors.New("partner is not active")
	ErrCodeSpaceExhausted = errors.New("failed to generate unique voucher code")

	// QR payload decoding
	ErrMalformedPayload   = errors.New("malformed qr payload")
	ErrInvalidPayloadType = errors.New("invalid qr payload type")

	// Infrastructure
	ErrReadDatabaseRow    = errors.New("failed to read database row")
	ErrInvalidExecContext = errors.New("invalid executor context")
)
