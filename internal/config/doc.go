// Package config provides configuration management for webdl.
//
// This package handles:
//   - Loading and saving settings from JSON or YAML files
//   - Default configuration values
//   - Overrides from WEBDL_* environment variables
//   - Conversion to tracker and host runtime options
//
// # Default Settings
//
//	settings := config.DefaultSettings()
//	// Saves to the user's downloads folder
//	// Badge enabled, four concurrent downloads
//
// # Loading from File
//
//	settings, err := config.Load("/path/to/config.yaml")
//	if err != nil {
//	    // Uses defaults if file doesn't exist
//	}
//	if err := settings.ApplyEnv(); err != nil {
//	    // Malformed WEBDL_* value
//	}
//
// # Saving Settings
//
//	settings.DownloadsPath = "/srv/incoming"
//	err := settings.Save("/path/to/config.json")
//
// # Environment
//
// Every field has an override named after its file key, upper-cased and
// prefixed: WEBDL_DOWNLOADS_PATH, WEBDL_SHOW_BADGE, WEBDL_HTTP_TIMEOUT and
// so on.
package config
