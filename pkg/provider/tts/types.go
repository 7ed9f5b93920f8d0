package tts

// Voice describes one entry in a playback provider's voice catalogue.
type Voice struct {
	// ID is the provider-specific voice identifier.
	ID string

	// Name is the human-readable voice name.
	Name string

	// Language is the BCP-47 tag of the voice's primary language.
	Language string
}
