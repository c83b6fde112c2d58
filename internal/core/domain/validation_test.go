package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsValidMAC(t *testing.T) {
	tests := []struct {
		mac   string
		valid bool
	}{
		{"AA:BB:CC:DD:EE:FF", true},
		{"aa:bb:cc:dd:ee:ff", true},
		{"aa-bb-cc-dd-ee-ff", true},
		{"invalid", false},
		{"AA:BB:CC:DD:EE", false},
		{"AA:BB:CC:DD:EE:FF:GG", false},
		{"", false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.valid, IsValidMAC(tt.mac), tt.mac)
	}
}

func TestNormalizeMAC(t *testing.T) {
	mac, ok := NormalizeMAC("AA-BB-CC-0D-EE-FF")
	assert.True(t, ok)
	assert.Equal(t, "aa:bb:cc:0d:ee:ff", mac)

	_, ok = NormalizeMAC("aa:bb")
	assert.False(t, ok)
}

func TestIsValidInterface(t *testing.T) {
	tests := []struct {
		iface string
		valid bool
	}{
		{"wlan0", true},
		{"wlan0mon", true},
		{"wlp3s0", true},
		{"eth0.100", false},
		{"very_long_interface_name_that_should_fail", false},
		{"; rm -rf /", false},
		{"", false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.valid, IsValidInterface(tt.iface), tt.iface)
	}
}
