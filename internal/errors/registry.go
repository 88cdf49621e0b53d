package errors

// ErrorTemplate defines a registered error type.
type ErrorTemplate struct {
	Category Category
	Message  string
	Detail   string
}

// registry maps error codes to their templates.
var registry = map[string]ErrorTemplate{
	// Listener declarations (L001-L019)
	"L001": {
		Category: CategoryTarget,
		Message:  "No event target",
		Detail:   "Listeners were declared without a document to attach them to. Pass the component's document explicitly.",
	},
	"L002": {
		Category: CategoryListener,
		Message:  "Unknown document event",
		Detail:   "The event name is not one of the recognized document event types.",
	},
	"L003": {
		Category: CategoryListener,
		Message:  "Invalid listener phase",
		Detail:   `A listener phase must be one of "mounted", "unmounted" or "both".`,
	},
	"L004": {
		Category: CategoryListener,
		Message:  "Missing listener callback",
		Detail:   "Every listener needs a callback. The same callback value is used to add and to remove the listener.",
	},
	"L005": {
		Category: CategoryListener,
		Message:  "Unknown listener action",
		Detail:   "Declarative listeners name a built-in action: log, count or echo.",
	},

	// Configuration (L020-L039)
	"L020": {
		Category: CategoryConfig,
		Message:  "Configuration file error",
		Detail:   "The configuration file could not be read or written.",
	},
	"L021": {
		Category: CategoryConfig,
		Message:  "Invalid configuration",
		Detail:   "The configuration file was parsed but contains invalid values.",
	},
	"L022": {
		Category: CategoryConfig,
		Message:  "Configuration file not found",
		Detail:   "No doclisten.json was found.",
	},

	// Bridge protocol (L040-L059)
	"L040": {
		Category: CategoryProtocol,
		Message:  "Malformed event frame",
		Detail:   "A frame received from the client is not a valid JSON event.",
	},
	"L041": {
		Category: CategoryProtocol,
		Message:  "Event frame without type",
		Detail:   `Event frames must carry a non-empty "type" field.`,
	},

	// CLI (L060-L079)
	"L060": {
		Category: CategoryCLI,
		Message:  "Invalid event input",
		Detail:   "A line of replay input is not a valid JSON event.",
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
