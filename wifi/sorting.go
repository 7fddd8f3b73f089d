package wifi

import "sort"

// SortNetworks sorts scan results in place.
// The sorting order is:
// 1. Signal strength (strongest first).
// 2. SSID alphabetically, hidden (empty) names last.
// 3. BSSID, so access points of one network stay together.
func SortNetworks(networks []NetworkInfo) {
	sort.SliceStable(networks, func(i, j int) bool {
		a := networks[i]
		b := networks[j]

		if a.SignalStrength != b.SignalStrength {
			return a.SignalStrength > b.SignalStrength
		}

		// Hidden networks sink below named ones of equal strength.
		if (a.SSID == "") != (b.SSID == "") {
			return a.SSID != ""
		}
		if a.SSID != b.SSID {
			return a.SSID < b.SSID
		}
		return a.BSSID < b.BSSID
	})
}

// FilterSecurity returns the networks using the given security type, in their
// original order.
func FilterSecurity(networks []NetworkInfo, security SecurityType) []NetworkInfo {
	var r []NetworkInfo
	for _, n := range networks {
		if n.Security == security {
			r = append(r, n)
		}
	}
	return r
}

// OpenNetworks returns the networks that can be joined without a password.
func OpenNetworks(networks []NetworkInfo) []NetworkInfo {
	return FilterSecurity(networks, SecurityNone)
}

// Strongest returns, for each SSID, the access point with the best signal.
// Unnamed networks are kept individually. Order follows first appearance.
func Strongest(networks []NetworkInfo) []NetworkInfo {
	index := make(map[string]int)
	var r []NetworkInfo
	for _, n := range networks {
		if n.SSID == "" {
			r = append(r, n)
			continue
		}
		if i, ok := index[n.SSID]; ok {
			if n.SignalStrength > r[i].SignalStrength {
				r[i] = n
			}
			continue
		}
		index[n.SSID] = len(r)
		r = append(r, n)
	}
	return r
}
