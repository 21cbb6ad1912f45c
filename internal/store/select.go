package store

import "github.com/Chapsvision-dev/company-profile-store/internal/config"

// Backend names understood by the registry.
const (
	NameLocal = "local"
	NameAzure = "azure"
)

// Select maps an environment snapshot to exactly one backend name:
// azure iff the mode flag is "production" and the remote backend's required
// values (storage account and container) are present, local otherwise.
// Pure function of cfg; callers that want auto-detection pass the result to
// New, callers that want an explicit backend skip it entirely.
func Select(cfg config.Config) string {
	if cfg.Environment == config.EnvProduction && cfg.Azure.Complete() {
		return NameAzure
	}
	return NameLocal
}
