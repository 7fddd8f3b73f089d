package wifi

// ChannelForFrequency maps a center frequency in MHz to its 802.11 channel
// number, or 0 when the frequency is not on a known band.
func ChannelForFrequency(mhz int) int {
	switch {
	case mhz == 2484:
		return 14
	case mhz >= 2412 && mhz <= 2472:
		return (mhz - 2407) / 5
	case mhz >= 5160 && mhz <= 5885:
		return (mhz - 5000) / 5
	case mhz >= 5955 && mhz <= 7115:
		return (mhz - 5950) / 5
	}
	return 0
}

// FrequencyForChannel maps a 2.4 GHz or 5 GHz channel number to its center
// frequency in MHz, or 0 when the channel is not recognised. 6 GHz channel
// numbers overlap the other bands and are not resolved here.
func FrequencyForChannel(ch int) int {
	switch {
	case ch == 14:
		return 2484
	case ch >= 1 && ch <= 13:
		return 2407 + ch*5
	case ch >= 32 && ch <= 177:
		return 5000 + ch*5
	}
	return 0
}
