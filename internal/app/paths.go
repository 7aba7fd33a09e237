package app

const (
	// Config
	DefaultConfigPath = "qrsrv.yaml"

	// Server
	DefaultListen = ":8080"

	// Generated images land here when the caller names no directory.
	DefaultOutputDir = "qrcodes"

	// Encoded when a stream request carries blank content.
	DefaultContent = "http://kyriemtx.com"
)
