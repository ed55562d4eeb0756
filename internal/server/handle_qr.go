package server

import (
	"net/http"

	"github.com/skip2/go-qrcode"
)

// handleQR renders a QR code for the public board URL so a second
// screen can be pointed at the game quickly. Falls back to the request
// host when no public URL is configured.
func handleQR(publicURL string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		target := publicURL
		if target == "" {
			scheme := "http"
			if r.TLS != nil {
				scheme = "https"
			}
			target = scheme + "://" + r.Host
		}

		png, err := qrcode.Encode(target, qrcode.Medium, 256)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}
		w.Header().Set("Content-Type", "image/png")
		w.WriteHeader(http.StatusOK)
		w.Write(png)
	}
}
