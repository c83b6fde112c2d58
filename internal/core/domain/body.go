package domain

// BodyKind discriminates the Body union.
type BodyKind uint8

const (
	BodyUnhandled BodyKind = iota
	BodyBeacon
	BodyProbeRequest
	BodyProbeResponse
	BodyAssociationRequest
	BodyAssociationResponse
)

func (k BodyKind) String() string {
	switch k {
	case BodyBeacon:
		return "Beacon"
	case BodyProbeRequest:
		return "ProbeRequest"
	case BodyProbeResponse:
		return "ProbeResponse"
	case BodyAssociationRequest:
		return "AssociationRequest"
	case BodyAssociationResponse:
		return "AssociationResponse"
	}
	return "Unhandled"
}

// Body holds the information decoded from a management frame body.
// Exactly the payload matching Kind is non-nil; Unhandled carries none.
type Body struct {
	Kind BodyKind

	Beacon              *Beacon
	ProbeRequest        *ProbeRequest
	ProbeResponse       *ProbeResponse
	AssociationRequest  *AssociationRequest
	AssociationResponse *AssociationResponse
}

func BeaconBody(b Beacon) Body { return Body{Kind: BodyBeacon, Beacon: &b} }

func ProbeRequestBody(p ProbeRequest) Body { return Body{Kind: BodyProbeRequest, ProbeRequest: &p} }

func ProbeResponseBody(p ProbeResponse) Body { return Body{Kind: BodyProbeResponse, ProbeResponse: &p} }

func AssociationRequestBody(a AssociationRequest) Body {
	return Body{Kind: BodyAssociationRequest, AssociationRequest: &a}
}

func AssociationResponseBody(a AssociationResponse) Body {
	return Body{Kind: BodyAssociationResponse, AssociationResponse: &a}
}

// SSID is the decoded SSID information element. Value is empty when the
// element bytes are not valid UTF-8.
type SSID struct {
	ElementID uint8
	Length    int
	Value     string
}

// Country is the decoded Country information element. Only the 3-character
// code is kept.
type Country struct {
	Code string
}

// Beacon body. CurrentChannel is filled from radio metadata, not the frame.
type Beacon struct {
	Timestamp      uint64
	Interval       uint16
	CapInfo        uint16
	SSID           SSID
	SupportedRates []float32
	Country        Country
	CurrentChannel uint8
}

// ProbeResponse has the same layout as Beacon.
type ProbeResponse Beacon

type ProbeRequest struct {
	SSID           SSID
	SupportedRates []float32
}

type AssociationRequest struct {
	CapInfo        uint16
	Interval       uint16
	SSID           SSID
	SupportedRates []float32
}

type AssociationResponse struct {
	CapInfo        uint16
	StatusCode     uint16
	AssociationID  uint16
	SupportedRates []float32
}
