package errors

// Template defines a registered error type.
type Template struct {
	Category   Category
	Message    string
	Detail     string
	Suggestion string
}

// Stable codes for known failure modes.
const (
	CodeTargetNotFound  = "G001"
	CodeRenderNoTarget  = "G002"
	CodeSearchFailed    = "G101"
	CodeSearchBadStatus = "G102"
	CodeConfigInvalid   = "G201"
	CodeConfigNotFound  = "G202"
	CodeVaultNotFound   = "G301"
	CodeVaultTooLarge   = "G302"
	CodeVaultBadID      = "G303"
)

// registry maps error codes to their templates.
var registry = map[string]Template{
	// Runtime (G001-G099)

	CodeTargetNotFound: {
		Category:   CategoryRuntime,
		Message:    "Component output target not found",
		Detail:     "The component was constructed against an element id that does not exist in the document. All renders on this component degrade to no-ops.",
		Suggestion: "Check the target id, or mount the component after the element exists.",
	},
	CodeRenderNoTarget: {
		Category: CategoryRuntime,
		Message:  "Render skipped: component has no live target",
		Detail:   "SetProps or Render was called on a component whose target lookup failed at construction.",
	},

	// Search (G101-G199)

	CodeSearchFailed: {
		Category:   CategorySearch,
		Message:    "Search query failed",
		Detail:     "The search backend returned an error. Prior results are left unchanged.",
		Suggestion: "Check that the backend endpoint is reachable.",
	},
	CodeSearchBadStatus: {
		Category: CategorySearch,
		Message:  "Search endpoint returned a non-200 status",
	},

	// Config (G201-G299)

	CodeConfigInvalid: {
		Category:   CategoryConfig,
		Message:    "Invalid configuration",
		Suggestion: "Validate gantry.json against the documented schema.",
	},
	CodeConfigNotFound: {
		Category:   CategoryConfig,
		Message:    "Configuration file not found",
		Suggestion: "Create a gantry.json in the project root or pass --config.",
	},

	// Vault (G301-G399)

	CodeVaultNotFound: {
		Category: CategoryVault,
		Message:  "Document not found in vault",
	},
	CodeVaultTooLarge: {
		Category:   CategoryVault,
		Message:    "Document exceeds the vault size limit",
		Suggestion: "Raise vault.max_size_bytes in gantry.json or shrink the document.",
	},
	CodeVaultBadID: {
		Category: CategoryVault,
		Message:  "Malformed document id",
		Detail:   "Document ids are hex strings; anything else is rejected before touching storage.",
	},
}

// Register adds or replaces a template at runtime. Intended for
// application-specific codes layered on top of the built-in set.
func Register(code string, t Template) {
	registry[code] = t
}
