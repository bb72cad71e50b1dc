package version

// Tag is set at build time via
// -ldflags="-X 'github.com/flokiorg/appinion/pkg/version.Tag=v0.1.0'"
var Tag = "dev"
