// Package qrwifi renders Wi-Fi join codes as terminal QR codes.
package qrwifi

import (
	"strings"

	qrcode "github.com/skip2/go-qrcode"

	"github.com/shazow/wifictl/wifi"
)

var escaper = strings.NewReplacer(
	`\`, `\\`,
	`;`, `\;`,
	`,`, `\,`,
	`:`, `\:`,
	`"`, `\"`,
)

// Escape handles the special character escaping for SSID and Password.
func Escape(s string) string {
	return escaper.Replace(s)
}

// Encode builds the WIFI: join string understood by phone cameras.
func Encode(ssid, password string, security wifi.SecurityType, hidden bool) string {
	var b strings.Builder

	b.WriteString("WIFI:S:")
	b.WriteString(Escape(ssid))
	b.WriteString(";")

	switch security {
	case wifi.SecurityNone:
		b.WriteString("T:nopass;")
	case wifi.SecurityWEP:
		b.WriteString("T:WEP;")
	case wifi.SecurityWPA, wifi.SecurityWPA2:
		b.WriteString("T:WPA;")
	case wifi.SecurityWPA3:
		b.WriteString("T:SAE;")
	default:
		// Don't set T if security is unknown, most readers will assume WPA.
	}
	if security != wifi.SecurityNone && password != "" {
		b.WriteString("P:")
		b.WriteString(Escape(password))
		b.WriteString(";")
	}

	if hidden {
		b.WriteString("H:true;")
	}

	b.WriteString(";")
	return b.String()
}

// Generate returns the join code as a QR code drawn with block characters.
func Generate(ssid, password string, security wifi.SecurityType, hidden bool) (string, error) {
	q, err := qrcode.New(Encode(ssid, password, security, hidden), qrcode.Medium)
	if err != nil {
		return "", err
	}
	return q.ToSmallString(false), nil
}
