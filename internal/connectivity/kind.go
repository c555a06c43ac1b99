package connectivity

import "strings"

// Kind is the normalized classification of one active network
// interface type.
type Kind string

const (
	KindUnknown   Kind = "unknown"
	KindNone      Kind = "none"
	KindOther     Kind = "other"
	KindMobile    Kind = "mobile"
	KindWifi      Kind = "wifi"
	KindEthernet  Kind = "ethernet"
	KindBluetooth Kind = "bluetooth"
	KindVPN       Kind = "vpn"
)

// Raw identifier tokens a Source is allowed to emit. A source reports
// at least one token per event and uses RawNone when nothing is up.
const (
	RawNone      = "none"
	RawOther     = "other"
	RawMobile    = "mobile"
	RawWifi      = "wifi"
	RawEthernet  = "ethernet"
	RawBluetooth = "bluetooth"
	RawVPN       = "vpn"
)

var rawKinds = map[string]Kind{
	RawNone:      KindNone,
	RawOther:     KindOther,
	RawMobile:    KindMobile,
	RawWifi:      KindWifi,
	RawEthernet:  KindEthernet,
	RawBluetooth: KindBluetooth,
	RawVPN:       KindVPN,
}

// KindFromRaw maps a raw source token to its Kind. Tokens outside the
// source contract land in KindOther, the catch-all bucket for types
// the platform cannot classify further.
func KindFromRaw(raw string) Kind {
	if kind, ok := rawKinds[strings.ToLower(strings.TrimSpace(raw))]; ok {
		return kind
	}

	return KindOther
}

// bit assigns every kind a position in the 8-bit set mask used for
// state equality.
func (k Kind) bit() uint8 {
	switch k {
	case KindUnknown:
		return 1 << 0
	case KindNone:
		return 1 << 1
	case KindOther:
		return 1 << 2
	case KindMobile:
		return 1 << 3
	case KindWifi:
		return 1 << 4
	case KindEthernet:
		return 1 << 5
	case KindBluetooth:
		return 1 << 6
	case KindVPN:
		return 1 << 7
	default:
		return KindOther.bit()
	}
}
