package ir

// Version constants for the vocabulary IR and the codebook tool.
const (
	// IRVersion is the ElementSpec schema version, recorded with every
	// journal entry.
	IRVersion = "1"

	// ToolVersion is the codebook release.
	ToolVersion = "0.1.0"
)
