package ie

import (
	"unicode/utf8"

	"github.com/lcalzada-xor/nearby/internal/core/domain"
)

// Element IDs
const (
	TagSSID           = 0x00
	TagSupportedRates = 0x01
	TagCountry        = 0x07
)

var rateTable = map[byte]float32{
	0x82: 1,
	0x84: 2,
	0x8b: 5.5,
	0x0c: 6,
	0x12: 9,
	0x96: 11,
	0x18: 12,
	0x24: 18,
	0x2c: 22,
	0x30: 24,
	0x42: 33,
	0x48: 36,
	0x60: 48,
	0x6c: 54,
}

// IterateIEs calls fn for each id/length/value triple in data until fn
// returns false. A triple whose length runs past the end stops the walk.
func IterateIEs(data []byte, fn func(id int, val []byte) bool) {
	offset := 0
	for offset+2 <= len(data) {
		id := int(data[offset])
		length := int(data[offset+1])
		offset += 2

		if offset+length > len(data) {
			return
		}
		if !fn(id, data[offset:offset+length]) {
			return
		}
		offset += length
	}
}

// FindIE returns the value of the first element with the given id, or nil.
func FindIE(data []byte, targetID int) []byte {
	var result []byte
	IterateIEs(data, func(id int, val []byte) bool {
		if id == targetID {
			result = val
			return false
		}
		return true
	})
	return result
}

// ParseSSID decodes the element at the start of data as an SSID, whatever
// its id. It returns the number of bytes consumed.
func ParseSSID(data []byte) (domain.SSID, int, error) {
	if len(data) < 2 {
		return domain.SSID{}, 0, truncated("ssid header", 2, len(data))
	}
	length := int(data[1])
	if len(data) < 2+length {
		return domain.SSID{}, 0, truncated("ssid", 2+length, len(data))
	}

	val := data[2 : 2+length]
	ssid := domain.SSID{ElementID: data[0], Length: length}
	if utf8.Valid(val) {
		ssid.Value = string(val)
	}
	return ssid, 2 + length, nil
}

// ParseSupportedRates decodes the element at the start of data as a supported
// rates list. Unknown rate codes are dropped; the cursor still advances by the
// declared count. Empty data means the element is absent.
func ParseSupportedRates(data []byte) ([]float32, int, error) {
	rates := []float32{}
	if len(data) == 0 {
		return rates, 0, nil
	}
	if len(data) < 2 {
		return nil, 0, truncated("supported rates header", 2, len(data))
	}
	count := int(data[1])
	if len(data) < 2+count {
		return nil, 0, truncated("supported rates", 2+count, len(data))
	}

	for _, code := range data[2 : 2+count] {
		if rate, ok := rateTable[code]; ok {
			rates = append(rates, rate)
		}
	}
	return rates, 2 + count, nil
}

// ParseCountry decodes the value of a Country element. Only the 3-byte code
// is kept.
func ParseCountry(val []byte) domain.Country {
	if len(val) < 3 || !utf8.Valid(val[:3]) {
		return domain.Country{}
	}
	return domain.Country{Code: string(val[:3])}
}

// FindCountry walks the elements following the supported rates. Elements
// 0x02-0x06 and 0x32-0x42 may precede the Country element and are skipped;
// any other element ends the search with an empty Country.
func FindCountry(data []byte) domain.Country {
	var country domain.Country
	IterateIEs(data, func(id int, val []byte) bool {
		switch {
		case id == TagCountry:
			country = ParseCountry(val)
			return false
		case id >= 0x02 && id <= 0x06, id >= 0x32 && id <= 0x42:
			return true
		}
		return false
	})
	return country
}
