package valueobjects

type ConfigStatus string

const (
	ConfigStatusConfigured    ConfigStatus = "configured"
	ConfigStatusNotConfigured ConfigStatus = "not_configured"
)

func ConfigStatusFrom(configured bool) ConfigStatus {
	if configured {
		return ConfigStatusConfigured
	}
	return ConfigStatusNotConfigured
}

func (s ConfigStatus) IsConfigured() bool {
	return s == ConfigStatusConfigured
}

func (s ConfigStatus) String() string {
	return string(s)
}
