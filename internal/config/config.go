package config

import "os"

// Settings carries per-source base URLs and credentials. Values come
// from the environment; a missing credential is surfaced by the scraper
// that needs it, not here, so that sources without keys still run.
type Settings struct {
	DatabaseURL string

	CongressAPIKey  string
	CongressBaseURL string

	FederalRegisterBaseURL string

	NYLegislatureAPIKey string
	NYLegislatureBaseURL string
	CALegislatureBaseURL string
}

// Load reads settings from the environment, applying defaults for the
// public upstream endpoints.
func Load() *Settings {
	return &Settings{
		DatabaseURL:            os.Getenv("DATABASE_URL"),
		CongressAPIKey:         os.Getenv("CONGRESS_API_KEY"),
		CongressBaseURL:        envOr("CONGRESS_API_BASE_URL", "https://api.congress.gov/v3"),
		FederalRegisterBaseURL: envOr("FEDERAL_REGISTER_BASE_URL", "https://www.federalregister.gov/api/v1"),
		NYLegislatureAPIKey:    os.Getenv("NY_LEGISLATURE_API_KEY"),
		NYLegislatureBaseURL:   envOr("NY_LEGISLATURE_BASE_URL", "https://legislation.nysenate.gov/api/v1"),
		CALegislatureBaseURL:   envOr("CA_LEGISLATURE_BASE_URL", "https://leginfo.legislature.ca.gov"),
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
