package gateway

import "strings"

type Mode string

const (
	ModeLive Mode = "live"
	ModeTest Mode = "test"
)

// testPathSegment identifies the sandbox endpoint, e.g.
// https://mdepayments.epdq.co.uk/ncol/test/orderstandard.asp.
const testPathSegment = "/test/"

// ResolveMode derives the environment from the endpoint URL.
func ResolveMode(url string) Mode {
	if strings.Contains(strings.ToLower(url), testPathSegment) {
		return ModeTest
	}
	return ModeLive
}

func (m Mode) IsTest() bool {
	return m == ModeTest
}
