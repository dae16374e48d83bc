package config

import "fmt"

// ErrValidation reports a malformed config entry. Validation runs once at
// the boundary, before any scraping starts; downstream code trusts the
// validated value.
type ErrValidation struct {
	Field  string
	Reason string
}

func (e ErrValidation) Error() string {
	return fmt.Sprintf("config: %s: %s", e.Field, e.Reason)
}

// Validate checks everything a run needs. Provider names are deliberately
// not matched against the known set here; an unrecognized provider is
// reported at dispatch, before any network call for that series.
func (c *Config) Validate() error {
	if c.User == "" {
		return ErrValidation{Field: "user", Reason: "AniList user name is required"}
	}

	for i, s := range c.Series {
		field := func(name string) string {
			return fmt.Sprintf("series[%d].%s", i, name)
		}

		if s.Name == "" {
			return ErrValidation{Field: field("name"), Reason: "cannot be empty"}
		}
		if s.AnilistID <= 0 {
			return ErrValidation{Field: field("anilist_id"), Reason: "must be a positive id"}
		}
		if s.Provider == "" {
			return ErrValidation{Field: field("provider"), Reason: "cannot be empty"}
		}
		if s.SiteID == "" {
			return ErrValidation{Field: field("site_id"), Reason: "cannot be empty"}
		}
	}

	return nil
}
