package models

// SystemConfig is the admin-controlled instance configuration.
type SystemConfig struct {
	IsPrivateMode bool `json:"isPrivateMode"`
	// AdminPasswordHash is compared verbatim; it is not a real hash.
	AdminPasswordHash string `json:"adminPasswordHash"`
	DefaultNiche      string `json:"defaultNiche"`
}

// DefaultSystemConfig is used when nothing has been persisted yet.
func DefaultSystemConfig() SystemConfig {
	return SystemConfig{
		IsPrivateMode:     true,
		AdminPasswordHash: "admin123",
	}
}

// WordPressConfig holds the CMS credentials used for publishing.
type WordPressConfig struct {
	URL         string `json:"url"`
	Username    string `json:"username"`
	AppPassword string `json:"appPassword"`
}

// Configured reports whether enough is set to attempt a publish.
func (c WordPressConfig) Configured() bool {
	return c.URL != "" && c.AppPassword != ""
}
