package ie

import (
	"encoding/binary"

	"github.com/lcalzada-xor/nearby/internal/core/domain"
)

// TagDSParameterSet carries the channel an access point announces.
const TagDSParameterSet = 0x03

// ParseBody decodes a management frame body. Only beacons, probes and
// association frames are decoded; every other frame gives an Unhandled
// body. channel is the radio channel the frame was captured on and becomes
// the beacon's current channel.
func ParseBody(fc domain.FrameControl, body []byte, channel uint8) (domain.Body, error) {
	if fc.Type != domain.FrameTypeManagement {
		return domain.Body{}, nil
	}

	switch fc.Subtype {
	case domain.SubtypeBeacon:
		b, err := parseBeacon(body, channel)
		if err != nil {
			return domain.Body{}, err
		}
		return domain.BeaconBody(b), nil
	case domain.SubtypeProbeResp:
		b, err := parseBeacon(body, channel)
		if err != nil {
			return domain.Body{}, err
		}
		return domain.ProbeResponseBody(domain.ProbeResponse(b)), nil
	case domain.SubtypeProbeReq:
		p, err := parseProbeRequest(body)
		if err != nil {
			return domain.Body{}, err
		}
		return domain.ProbeRequestBody(p), nil
	case domain.SubtypeAssoReq:
		a, err := parseAssociationRequest(body)
		if err != nil {
			return domain.Body{}, err
		}
		return domain.AssociationRequestBody(a), nil
	case domain.SubtypeAssoResp:
		a, err := parseAssociationResponse(body)
		if err != nil {
			return domain.Body{}, err
		}
		return domain.AssociationResponseBody(a), nil
	}
	return domain.Body{}, nil
}

func parseBeacon(body []byte, channel uint8) (domain.Beacon, error) {
	const fixed = 12
	if len(body) < fixed {
		return domain.Beacon{}, truncated("beacon fixed parameters", fixed, len(body))
	}
	b := domain.Beacon{
		Timestamp:      binary.LittleEndian.Uint64(body[0:8]),
		Interval:       binary.LittleEndian.Uint16(body[8:10]),
		CapInfo:        binary.LittleEndian.Uint16(body[10:12]),
		CurrentChannel: channel,
	}

	rest := body[fixed:]
	ssid, n, err := ParseSSID(rest)
	if err != nil {
		return domain.Beacon{}, err
	}
	b.SSID = ssid
	rest = rest[n:]

	rates, n, err := ParseSupportedRates(rest)
	if err != nil {
		return domain.Beacon{}, err
	}
	b.SupportedRates = rates
	rest = rest[n:]

	b.Country = FindCountry(rest)

	// Frames replayed without radio metadata still announce their channel.
	if b.CurrentChannel == 0 {
		if ds := FindIE(rest, TagDSParameterSet); len(ds) == 1 {
			b.CurrentChannel = ds[0]
		}
	}
	return b, nil
}

func parseProbeRequest(body []byte) (domain.ProbeRequest, error) {
	ssid, n, err := ParseSSID(body)
	if err != nil {
		return domain.ProbeRequest{}, err
	}
	rates, _, err := ParseSupportedRates(body[n:])
	if err != nil {
		return domain.ProbeRequest{}, err
	}
	return domain.ProbeRequest{SSID: ssid, SupportedRates: rates}, nil
}

func parseAssociationRequest(body []byte) (domain.AssociationRequest, error) {
	const fixed = 4
	if len(body) < fixed {
		return domain.AssociationRequest{}, truncated("association request fixed parameters", fixed, len(body))
	}
	a := domain.AssociationRequest{
		CapInfo:  binary.LittleEndian.Uint16(body[0:2]),
		Interval: binary.LittleEndian.Uint16(body[2:4]),
	}

	rest := body[fixed:]
	ssid, n, err := ParseSSID(rest)
	if err != nil {
		return domain.AssociationRequest{}, err
	}
	a.SSID = ssid

	rates, _, err := ParseSupportedRates(rest[n:])
	if err != nil {
		return domain.AssociationRequest{}, err
	}
	a.SupportedRates = rates
	return a, nil
}

func parseAssociationResponse(body []byte) (domain.AssociationResponse, error) {
	const fixed = 6
	if len(body) < fixed {
		return domain.AssociationResponse{}, truncated("association response fixed parameters", fixed, len(body))
	}
	a := domain.AssociationResponse{
		CapInfo:       binary.LittleEndian.Uint16(body[0:2]),
		StatusCode:    binary.LittleEndian.Uint16(body[2:4]),
		AssociationID: binary.LittleEndian.Uint16(body[4:6]),
	}

	rates, _, err := ParseSupportedRates(body[fixed:])
	if err != nil {
		return domain.AssociationResponse{}, err
	}
	a.SupportedRates = rates
	return a, nil
}
