package config

const (
	defaultWorkDir         = "~/.local/share/lyricvid/work"
	defaultLogDir          = "~/.local/share/lyricvid/logs"
	defaultHistoryDB       = "~/.local/share/lyricvid/history.db"
	defaultImageBaseURL    = "https://image.pollinations.ai/prompt"
	defaultImageStyle      = "realism"
	defaultImageWidth      = 1920
	defaultImageHeight     = 1080
	defaultSecondsPerImage = 4.0
	defaultGapPrompt       = "instrumental interlude, atmospheric abstract landscape"
	defaultImageTimeout    = 120
	defaultFailurePolicy   = FailurePolicySkip
	defaultFontSize        = 30
	defaultOverlayPadding  = 10
	defaultBottomOffset    = 50
	defaultBackgroundAlpha = 128
	defaultFPS             = 24
	defaultFFmpegBinary    = "ffmpeg"
	defaultFFprobeBinary   = "ffprobe"
	defaultVideoCodec      = "libx264"
	defaultAudioCodec      = "aac"
	defaultPixelFormat     = "yuv420p"
	defaultNotifyTimeout   = 10
	defaultLogFormat       = "console"
	defaultLogLevel        = "info"
)

// Failure policies applied when a single image request fails.
const (
	FailurePolicySkip    = "skip"
	FailurePolicyStretch = "stretch"
	FailurePolicyAbort   = "abort"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			WorkDir:   defaultWorkDir,
			LogDir:    defaultLogDir,
			HistoryDB: defaultHistoryDB,
		},
		Image: Image{
			BaseURL:         defaultImageBaseURL,
			Style:           defaultImageStyle,
			Width:           defaultImageWidth,
			Height:          defaultImageHeight,
			NoLogo:          true,
			SecondsPerImage: defaultSecondsPerImage,
			GapPrompt:       defaultGapPrompt,
			TimeoutSeconds:  defaultImageTimeout,
			FailurePolicy:   defaultFailurePolicy,
		},
		Overlay: Overlay{
			FontSize:        defaultFontSize,
			Padding:         defaultOverlayPadding,
			BottomOffset:    defaultBottomOffset,
			BackgroundAlpha: defaultBackgroundAlpha,
		},
		Video: Video{
			FPS:           defaultFPS,
			FFmpegBinary:  defaultFFmpegBinary,
			FFprobeBinary: defaultFFprobeBinary,
			VideoCodec:    defaultVideoCodec,
			AudioCodec:    defaultAudioCodec,
			PixelFormat:   defaultPixelFormat,
		},
		Notifications: Notifications{
			RequestTimeout: defaultNotifyTimeout,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
