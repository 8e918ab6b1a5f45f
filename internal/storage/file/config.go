package file

import "path/filepath"

// Config holds the location of every JSON document
type Config struct {
	LorePath           string
	PlayersPath        string
	MissionsPath       string
	SecretMissionsPath string
	RecipientsPath     string
}

// DefaultConfig returns the data file layout under baseDir
func DefaultConfig(baseDir string) Config {
	return Config{
		LorePath:           filepath.Join(baseDir, "data", "lore_data.json"),
		PlayersPath:        filepath.Join(baseDir, "data", "player_data.json"),
		MissionsPath:       filepath.Join(baseDir, "data", "missions_data.json"),
		SecretMissionsPath: filepath.Join(baseDir, "data", "secret_missions_data.json"),
		RecipientsPath:     filepath.Join(baseDir, "data", "recipients_data.json"),
	}
}
