package settings

import "errors"

// Default values for user settings when not set.
const (
	DefaultWatermarkPosition = PositionBottomRight
	DefaultWatermarkOpacity  = 0.8
	MaxWatermarkBytes        = 5 << 20
)

// Watermark positions.
const (
	PositionTopLeft     = "top-left"
	PositionTopRight    = "top-right"
	PositionBottomLeft  = "bottom-left"
	PositionBottomRight = "bottom-right"
	PositionCenter      = "center"
)

// Errors returned by the settings service.
var (
	ErrInvalidSettings    = errors.New("invalid settings")
	ErrUnsupportedImage   = errors.New("watermark must be a png, jpeg or webp image")
	ErrWatermarkTooLarge  = errors.New("watermark exceeds 5 MiB")
	ErrWatermarkNotFound  = errors.New("no watermark uploaded")
	ErrStorageUnavailable = errors.New("storage not configured")
)

// Settings holds per-user republishing preferences.
type Settings struct {
	WatermarkEnabled  bool    `json:"watermark_enabled"`
	WatermarkKey      string  `json:"watermark_key,omitempty"`
	WatermarkPosition string  `json:"watermark_position"`
	WatermarkOpacity  float64 `json:"watermark_opacity"`
}

// UpsertRequest is the input for updating settings (all fields optional).
type UpsertRequest struct {
	WatermarkEnabled  *bool    `json:"watermark_enabled,omitempty"`
	WatermarkPosition *string  `json:"watermark_position,omitempty"`
	WatermarkOpacity  *float64 `json:"watermark_opacity,omitempty"`
}

func defaults() Settings {
	return Settings{
		WatermarkPosition: DefaultWatermarkPosition,
		WatermarkOpacity:  DefaultWatermarkOpacity,
	}
}

func validPosition(p string) bool {
	switch p {
	case PositionTopLeft, PositionTopRight, PositionBottomLeft, PositionBottomRight, PositionCenter:
		return true
	}
	return false
}
