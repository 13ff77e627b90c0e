// Package config loads the CLI's settings from a TOML file and the
// environment.
//
// # Configuration Discovery
//
// The Load function follows this resolution order:
//
//  1. If a path is explicitly provided, use it
//  2. Otherwise, use ~/.config/nrggyms/config.toml (default)
//  3. If the config file doesn't exist, start from defaults
//  4. NRG_* environment variables override whatever the file set
//
// The CLI additionally loads a .env file from the working directory before
// calling Load, so the same variables can live there.
//
// # Default Values
//
//   - Config file: ~/.config/nrggyms/config.toml
//   - Portal origin: https://nrggym.perfectgym.com
//   - Update interval: 3600 seconds (values below 300 are raised to 300)
//   - Log level: info
//   - State file: ~/.local/state/nrggyms/state.toml
//
// # TOML Format
//
//	email = "member@example.com"
//	password = "secret"
//	bookings_path = "/clientportal2/MyCalendar/MyCalendar/GetCalendar"
//	club_id = 5
//	update_interval = 3600
//	log_level = "debug"
//
// Every key is optional in the file, but Validate rejects a Config with no
// email or password. Tilde expansion is performed on state_path.
//
// # Environment
//
//	NRG_EMAIL, NRG_PASSWORD, NRG_BOOKINGS_PATH, NRG_CLUB_ID,
//	NRG_UPDATE_INTERVAL, NRG_BASE_URL, NRG_LOG_LEVEL, NRG_STATE_PATH
//
// Only variables that are set override the file.
package config
