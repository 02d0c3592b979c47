package errors

// ErrorTemplate defines a registered error type.
type ErrorTemplate struct {
	Category Category
	Message  string
	Detail   string
	DocURL   string
}

// registry maps error codes to their templates.
var registry = map[string]ErrorTemplate{
	// ============================================
	// Runtime Errors (E001-E039)
	// ============================================

	"E001": {
		Category: CategoryRuntime,
		Message:  "Container misconfigured",
		Detail:   "A container was created without its required subscription manager.",
		DocURL:   "https://qwik.dev/docs/errors/E001",
	},
	"E002": {
		Category: CategoryRuntime,
		Message:  "Task registered outside setup",
		Detail:   "Lifecycle registrars must be called during element setup with a valid invocation context.",
		DocURL:   "https://qwik.dev/docs/errors/E002",
	},
	"E010": {
		Category: CategoryRuntime,
		Message:  "Track target is not a trackable object",
		Detail:   "The tracker was called with a plain value. Only store objects created against the container's subscription manager can be tracked.",
		DocURL:   "https://qwik.dev/docs/errors/E010",
	},
	"E011": {
		Category: CategoryRuntime,
		Message:  "Symbol not registered",
		Detail:   "A QRL referenced a (chunk, symbol) pair that no module registered. The module that defines the symbol may not have been loaded.",
		DocURL:   "https://qwik.dev/docs/errors/E011",
	},
	"E012": {
		Category: CategoryRuntime,
		Message:  "Mount failed",
		Detail:   "A mount-style registration returned an error; component setup was aborted.",
		DocURL:   "https://qwik.dev/docs/errors/E012",
	},

	// ============================================
	// Resume Errors (E040-E059)
	// ============================================

	"E040": {
		Category: CategoryResume,
		Message:  "Trigger reference invalid",
		Detail:   "A run-trigger reference did not resolve to the watch entry point with a captured descriptor.",
		DocURL:   "https://qwik.dev/docs/errors/E040",
	},
	"E041": {
		Category: CategoryResume,
		Message:  "Flush before bind",
		Detail:   "The scheduler was flushed before a container was bound to it.",
		DocURL:   "https://qwik.dev/docs/errors/E041",
	},

	// ============================================
	// Configuration Errors (E120-E139)
	// ============================================

	"E120": {
		Category: CategoryConfig,
		Message:  "Invalid qwik.json",
		Detail:   "The qwik.json configuration file is malformed.",
		DocURL:   "https://qwik.dev/docs/errors/E120",
	},
	"E121": {
		Category: CategoryConfig,
		Message:  "Missing required configuration",
		Detail:   "A required configuration value is not set.",
		DocURL:   "https://qwik.dev/docs/errors/E121",
	},
	"E122": {
		Category: CategoryConfig,
		Message:  "Invalid address",
		Detail:   "The configured listen address is invalid.",
		DocURL:   "https://qwik.dev/docs/errors/E122",
	},

	// ============================================
	// CLI Errors (E140-E159)
	// ============================================

	"E140": {
		Category: CategoryCLI,
		Message:  "Not a qwik project",
		Detail:   "The current directory has no qwik.json. Run this command from a project root.",
		DocURL:   "https://qwik.dev/docs/errors/E140",
	},
	"E141": {
		Category: CategoryCLI,
		Message:  "Server failed to start",
		Detail:   "The demo server could not bind its listen address.",
		DocURL:   "https://qwik.dev/docs/errors/E141",
	},
}

// GetAllCodes returns all registered error codes.
func GetAllCodes() []string {
	codes := make([]string, 0, len(registry))
	for code := range registry {
		codes = append(codes, code)
	}
	return codes
}

// GetTemplate returns the template for an error code.
func GetTemplate(code string) (ErrorTemplate, bool) {
	t, ok := registry[code]
	return t, ok
}

// Register adds a new error template to the registry.
func Register(code string, template ErrorTemplate) {
	registry[code] = template
}
