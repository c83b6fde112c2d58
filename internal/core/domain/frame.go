package domain

// FrameType is the 2-bit type field of the 802.11 frame control.
type FrameType uint8

const (
	FrameTypeManagement FrameType = iota
	FrameTypeControl
	FrameTypeData
	FrameTypeUnknown
)

func (t FrameType) String() string {
	switch t {
	case FrameTypeManagement:
		return "Management"
	case FrameTypeControl:
		return "Control"
	case FrameTypeData:
		return "Data"
	}
	return "Unknown"
}

// FrameSubtype is the decoded 4-bit subtype. The numeric code space is reused
// across frame types, so the mapping from code to subtype depends on the type.
type FrameSubtype uint8

const (
	SubtypeUnknown FrameSubtype = iota

	// Management
	SubtypeAssoReq
	SubtypeAssoResp
	SubtypeReassoReq
	SubtypeReassoResp
	SubtypeProbeReq
	SubtypeProbeResp
	SubtypeBeacon
	SubtypeAtim
	SubtypeDisasso
	SubtypeAuth
	SubtypeDeauth

	// Data
	SubtypeData
	SubtypeNullData
	SubtypeQoSData
	SubtypeQoSNull
)

var subtypeNames = map[FrameSubtype]string{
	SubtypeAssoReq:    "AssoReq",
	SubtypeAssoResp:   "AssoResp",
	SubtypeReassoReq:  "ReassoReq",
	SubtypeReassoResp: "ReassoResp",
	SubtypeProbeReq:   "ProbeReq",
	SubtypeProbeResp:  "ProbeResp",
	SubtypeBeacon:     "Beacon",
	SubtypeAtim:       "Atim",
	SubtypeDisasso:    "Disasso",
	SubtypeAuth:       "Auth",
	SubtypeDeauth:     "Deauth",
	SubtypeData:       "Data",
	SubtypeNullData:   "NullData",
	SubtypeQoSData:    "QoSData",
	SubtypeQoSNull:    "QoSNull",
}

func (s FrameSubtype) String() string {
	if name, ok := subtypeNames[s]; ok {
		return name
	}
	return "Unknown"
}

// FrameControl is the decoded 2-octet frame control field.
type FrameControl struct {
	ProtocolVersion uint8
	Type            FrameType
	Subtype         FrameSubtype

	ToDS     bool
	FromDS   bool
	MoreFrag bool
	Retry    bool
	PwrMgmt  bool
	MoreData bool
	WEP      bool
	Order    bool
}

// Is reports whether the frame has the given type and subtype.
func (fc FrameControl) Is(t FrameType, s FrameSubtype) bool {
	return fc.Type == t && fc.Subtype == s
}

// MacHeader is a fully decoded 802.11 MAC header plus its body information.
// Addresses are lowercase colon separated hex; BSSID is empty for WDS frames.
type MacHeader struct {
	FrameControl FrameControl
	Duration     [2]byte
	Dst          string
	Src          string
	BSSID        string
	SeqCtl       [2]byte
	Body         Body
}

// RadioMetadata is the per-frame radio information reported by the capture
// side. Missing fields are zero.
type RadioMetadata struct {
	Signal    int8    // dBm
	Frequency float32 // MHz
	Channel   uint8
}
