package dot11

import "github.com/lcalzada-xor/nearby/internal/core/domain"

var managementSubtypes = map[uint8]domain.FrameSubtype{
	0:  domain.SubtypeAssoReq,
	1:  domain.SubtypeAssoResp,
	2:  domain.SubtypeReassoReq,
	3:  domain.SubtypeReassoResp,
	4:  domain.SubtypeProbeReq,
	5:  domain.SubtypeProbeResp,
	8:  domain.SubtypeBeacon,
	9:  domain.SubtypeAtim,
	10: domain.SubtypeDisasso,
	11: domain.SubtypeAuth,
	12: domain.SubtypeDeauth,
}

var dataSubtypes = map[uint8]domain.FrameSubtype{
	0:  domain.SubtypeData,
	4:  domain.SubtypeNullData,
	8:  domain.SubtypeQoSData,
	12: domain.SubtypeQoSNull,
}

// DecodeFrameControl decodes the two frame control octets.
func DecodeFrameControl(b0, b1 byte) (domain.FrameControl, error) {
	version := b0 & 0x03
	if version != 0 {
		return domain.FrameControl{}, ErrUnsupportedProtocolVersion
	}

	t := domain.FrameType((b0 & 0x0C) >> 2)
	code := (b0 & 0xF0) >> 4

	fc := domain.FrameControl{
		ProtocolVersion: version,
		Type:            t,
		Subtype:         subtype(t, code),
		ToDS:            flag(b1, 0),
		FromDS:          flag(b1, 1),
		MoreFrag:        flag(b1, 2),
		Retry:           flag(b1, 3),
		PwrMgmt:         flag(b1, 4),
		MoreData:        flag(b1, 5),
		WEP:             flag(b1, 6),
		Order:           flag(b1, 7),
	}
	return fc, nil
}

func subtype(t domain.FrameType, code uint8) domain.FrameSubtype {
	var table map[uint8]domain.FrameSubtype
	switch t {
	case domain.FrameTypeManagement:
		table = managementSubtypes
	case domain.FrameTypeData:
		table = dataSubtypes
	default:
		return domain.SubtypeUnknown
	}
	if s, ok := table[code]; ok {
		return s
	}
	return domain.SubtypeUnknown
}

func flag(b byte, bit uint) bool {
	return b&(1<<bit) != 0
}
