package output

import (
	"fmt"
	"io"

	"github.com/mdp/qrterminal/v3"
	"github.com/skip2/go-qrcode"
	"rsc.io/qr"

	"github.com/mrz1836/payreq/internal/fileutil"
	payerr "github.com/mrz1836/payreq/pkg/errors"
)

const (
	// DefaultPNGSize is the default edge length of PNG QR codes, in pixels.
	DefaultPNGSize = 256

	minPNGSize = 64
	maxPNGSize = 4096

	pngFilePermissions = 0o644
	pngDirPermissions  = 0o750
)

// QRConfig configures QR code rendering.
type QRConfig struct {
	// Level is the error correction level.
	Level qr.Level
	// QuietZone is the number of empty blocks around the QR code.
	QuietZone int
	// HalfBlocks uses half-height blocks for a more compact display.
	HalfBlocks bool
}

// DefaultQRConfig returns the terminal rendering defaults. Payment URIs are
// short, so medium correction still fits a small code.
func DefaultQRConfig() QRConfig {
	return QRConfig{
		Level:      qr.M,
		QuietZone:  1,
		HalfBlocks: true,
	}
}

// CanRenderQR checks if the output writer is a terminal suitable for QR rendering.
func CanRenderQR(w io.Writer) bool {
	return IsTerminal(w)
}

// RenderQR draws a QR code for data on a terminal. Non-terminal writers get
// nothing.
func RenderQR(w io.Writer, data string, cfg QRConfig) error {
	if !CanRenderQR(w) {
		return nil
	}
	return renderQR(w, data, cfg)
}

func renderQR(w io.Writer, data string, cfg QRConfig) error {
	if data == "" {
		return payerr.WithDetails(payerr.ErrInvalidInput, map[string]string{"reason": "empty QR payload"})
	}

	qrterminal.GenerateWithConfig(data, qrterminal.Config{
		Level:          cfg.Level,
		Writer:         w,
		QuietZone:      cfg.QuietZone,
		HalfBlocks:     cfg.HalfBlocks,
		BlackChar:      qrterminal.BLACK_BLACK,
		WhiteChar:      qrterminal.WHITE_WHITE,
		WhiteBlackChar: qrterminal.WHITE_BLACK,
		BlackWhiteChar: qrterminal.BLACK_WHITE,
	})
	return nil
}

// QRPNG encodes data as a PNG QR code with the given edge length.
func QRPNG(data string, size int, level qr.Level) ([]byte, error) {
	if data == "" {
		return nil, payerr.WithDetails(payerr.ErrInvalidInput, map[string]string{"reason": "empty QR payload"})
	}
	if size < minPNGSize || size > maxPNGSize {
		return nil, payerr.WithDetails(payerr.ErrInvalidInput, map[string]string{
			"size":   fmt.Sprint(size),
			"reason": fmt.Sprintf("size must be between %d and %d", minPNGSize, maxPNGSize),
		})
	}

	png, err := qrcode.Encode(data, recoveryLevel(level), size)
	if err != nil {
		return nil, payerr.Wrap(err, "encoding QR code")
	}
	return png, nil
}

// WriteQRPNG writes a PNG QR code for data to path, creating parent directories.
func WriteQRPNG(path, data string, size int, level qr.Level) error {
	png, err := QRPNG(data, size, level)
	if err != nil {
		return err
	}
	if err := fileutil.EnsureDir(path, pngDirPermissions); err != nil {
		return fmt.Errorf("creating QR directory: %w", err)
	}
	return fileutil.WriteAtomic(path, png, pngFilePermissions)
}

func recoveryLevel(level qr.Level) qrcode.RecoveryLevel {
	switch level {
	case qr.L:
		return qrcode.Low
	case qr.M:
		return qrcode.Medium
	case qr.Q:
		return qrcode.High
	case qr.H:
		return qrcode.Highest
	default:
		return qrcode.Medium
	}
}
