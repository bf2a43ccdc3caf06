// Package qr implements the QR payload codec. The serialized form is the
// wire contract for scanner clients:
//
//	{"type":"BABSY_VOUCHER","code":"...","partnerId":"...","timestamp":"RFC3339"}
package qr

import (
	"encoding/json"
	"time"

	"babsy-voucher-platform/internal/domain"
)

// PayloadType is the discriminator that marks a payload as belonging to
// this system. Decoders reject anything else before trusting other fields.
const PayloadType = "BABSY_VOUCHER"

// Payload is the decoded identity+authenticity record bound to a voucher.
type Payload struct {
	Type      string
	Code      string
	PartnerID string
	Timestamp time.Time
}

type wirePayload struct {
	Type      string `json:"type"`
	Code      string `json:"code"`
	PartnerID string `json:"partnerId"`
	Timestamp string `json:"timestamp"`
}

// Encode serializes the payload for a voucher code bound to a partner.
func Encode(code, partnerID string, ts time.Time) ([]byte, error) {
	if code == "" || partnerID == "" {
		return nil, domain.ErrInvalidArgument
	}
	return json.Marshal(wirePayload{
		Type:      PayloadType,
		Code:      code,
		PartnerID: partnerID,
		Timestamp: ts.UTC().Format(time.RFC3339),
	})
}

// Decode parses and validates scanner input. Parse failures and missing
// fields return domain.ErrMalformedPayload; a parseable payload with the
// wrong discriminator returns domain.ErrInvalidPayloadType. The
// discriminator is checked before any other field is trusted.
func Decode(data []byte) (*Payload, error) {
	var w wirePayload
	if err := json.Unmarshal(data, &w); err != nil {
		return nil, domain.ErrMalformedPayload
	}
	if w.Type != PayloadType {
		return nil, domain.ErrInvalidPayloadType
	}
	if w.Code == "" || w.PartnerID == "" {
		return nil, domain.ErrMalformedPayload
	}
	p := &Payload{
		Type:      w.Type,
		Code:      w.Code,
		PartnerID: w.PartnerID,
	}
	if w.Timestamp != "" {
		ts, err := time.Parse(time.RFC3339, w.Timestamp)
		if err != nil {
			return nil, domain.ErrMalformedPayload
		}
		p.Timestamp = ts
	}
	return p, nil
}
