package capture

// FrequencyToChannel maps a centre frequency in MHz to its channel number,
// or 0 when the frequency is outside the 2.4 and 5 GHz bands.
func FrequencyToChannel(freq int) int {
	switch {
	case freq == 2484:
		return 14
	case freq >= 2412 && freq <= 2472:
		return (freq-2412)/5 + 1
	case freq >= 5035 && freq <= 5865:
		return (freq - 5000) / 5
	}
	return 0
}

// ChannelToFrequency is the inverse of FrequencyToChannel.
func ChannelToFrequency(channel int) int {
	switch {
	case channel == 14:
		return 2484
	case channel >= 1 && channel <= 13:
		return (channel-1)*5 + 2412
	case channel >= 32 && channel <= 173:
		return 5000 + channel*5
	}
	return 0
}
