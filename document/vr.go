package document

// VR is a DICOM value representation.
type VR uint8

// The closed set of value representations. VRUnknown covers anything the
// parser reports that is not listed here.
const (
	VRUnknown VR = iota
	VRAE
	VRAS
	VRAT
	VRCS
	VRDA
	VRDS
	VRDT
	VRFD
	VRFL
	VRIS
	VRLO
	VRLT
	VROB
	VROD
	VROF
	VROL
	VROV
	VROW
	VRPN
	VRSH
	VRSL
	VRSQ
	VRSS
	VRST
	VRSV
	VRTM
	VRUC
	VRUI
	VRUL
	VRUN
	VRUR
	VRUS
	VRUT
	VRUV
)

var vrNames = [...]string{
	VRUnknown: "??",
	VRAE:      "AE",
	VRAS:      "AS",
	VRAT:      "AT",
	VRCS:      "CS",
	VRDA:      "DA",
	VRDS:      "DS",
	VRDT:      "DT",
	VRFD:      "FD",
	VRFL:      "FL",
	VRIS:      "IS",
	VRLO:      "LO",
	VRLT:      "LT",
	VROB:      "OB",
	VROD:      "OD",
	VROF:      "OF",
	VROL:      "OL",
	VROV:      "OV",
	VROW:      "OW",
	VRPN:      "PN",
	VRSH:      "SH",
	VRSL:      "SL",
	VRSQ:      "SQ",
	VRSS:      "SS",
	VRST:      "ST",
	VRSV:      "SV",
	VRTM:      "TM",
	VRUC:      "UC",
	VRUI:      "UI",
	VRUL:      "UL",
	VRUN:      "UN",
	VRUR:      "UR",
	VRUS:      "US",
	VRUT:      "UT",
	VRUV:      "UV",
}

var vrByName = func() map[string]VR {
	m := make(map[string]VR, len(vrNames))
	for vr, name := range vrNames {
		if VR(vr) != VRUnknown {
			m[name] = VR(vr)
		}
	}
	return m
}()

// ParseVR maps a two-letter code to its VR. Unrecognized codes yield
// VRUnknown.
func ParseVR(s string) VR {
	if vr, ok := vrByName[s]; ok {
		return vr
	}
	return VRUnknown
}

// String returns the two-letter code.
func (v VR) String() string {
	if int(v) < len(vrNames) {
		return vrNames[v]
	}
	return vrNames[VRUnknown]
}
