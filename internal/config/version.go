package config

// Version is the coliving backend binary version.
// Set at build time via: -ldflags "-X github.com/MoonrakerAI/coliving-backend/internal/config.Version=<tag>"
// Defaults to "dev" when built without ldflags.
var Version = "dev"
