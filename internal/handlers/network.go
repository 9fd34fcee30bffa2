package handlers

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"io"
	"net"

	"github.com/yeqown/go-qrcode/v2"
	"github.com/yeqown/go-qrcode/writer/standard"
)

// NetworkAddress is one LAN address players can reach the server on.
type NetworkAddress struct {
	Name    string `json:"name"`
	Address string `json:"address"`
}

// localAddresses enumerates the machine's non-loopback IPv4 addresses. The
// host screen shows these so players on the same network can find the server.
func localAddresses() []NetworkAddress {
	out := make([]NetworkAddress, 0, 4)
	ifaces, err := net.Interfaces()
	if err != nil {
		return out
	}
	for _, iface := range ifaces {
		if iface.Flags&net.FlagUp == 0 || iface.Flags&net.FlagLoopback != 0 {
			continue
		}
		addrs, err := iface.Addrs()
		if err != nil {
			continue
		}
		for _, addr := range addrs {
			ipnet, ok := addr.(*net.IPNet)
			if !ok {
				continue
			}
			ip := ipnet.IP.To4()
			if ip == nil || ip.IsLoopback() {
				continue
			}
			out = append(out, NetworkAddress{Name: iface.Name, Address: ip.String()})
		}
	}
	return out
}

// joinURL builds the player-facing URL for a room, preferring a LAN address
// over localhost.
func (h *Handler) joinURL(code string) string {
	host := "localhost"
	if addrs := localAddresses(); len(addrs) > 0 {
		host = addrs[0].Address
	}
	return fmt.Sprintf("http://%s:%s/play?code=%s", host, h.cfg.Server.Port, code)
}

type bufferCloser struct{ *bytes.Buffer }

func (bufferCloser) Close() error { return nil }

var _ io.WriteCloser = bufferCloser{}

// qrDataURI renders the join URL as a PNG QR code, returned as a data URI the
// host page can drop straight into an img tag.
func qrDataURI(url string) (string, error) {
	qrc, err := qrcode.NewWith(url,
		qrcode.WithErrorCorrectionLevel(qrcode.ErrorCorrectionMedium),
		qrcode.WithEncodingMode(qrcode.EncModeByte),
	)
	if err != nil {
		return "", fmt.Errorf("build qr code: %w", err)
	}

	var buf bytes.Buffer
	w := standard.NewWithWriter(bufferCloser{&buf},
		standard.WithBuiltinImageEncoder(standard.PNG_FORMAT),
		standard.WithQRWidth(8),
	)
	if err := qrc.Save(w); err != nil {
		return "", fmt.Errorf("render qr code: %w", err)
	}
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}
