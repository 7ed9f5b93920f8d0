package config

// ConfigDiff describes what changed between two configs.
// Only fields that can be safely hot-reloaded are tracked: scoring and
// playback tuning, the corpus path, and the log level. Provider, server,
// and history changes require a restart.
type ConfigDiff struct {
	// ThresholdsChanged is true when the aligner window or either
	// similarity threshold changed.
	ThresholdsChanged bool

	// RatesChanged is true when a playback speaking rate changed.
	RatesChanged bool

	// VoiceChanged is true when the playback voice or language changed.
	VoiceChanged bool

	// CorpusChanged is true when the corpus path changed.
	CorpusChanged bool

	LogLevelChanged bool
	NewLogLevel     LogLevel
}

// Any reports whether the diff contains at least one change.
func (d ConfigDiff) Any() bool {
	return d.ThresholdsChanged || d.RatesChanged || d.VoiceChanged ||
		d.CorpusChanged || d.LogLevelChanged
}

// Diff compares old and new configs and returns what changed.
// Only tracks changes that are safe to apply without restart.
func Diff(old, new *Config) ConfigDiff {
	d := ConfigDiff{}

	if old.Server.LogLevel != new.Server.LogLevel {
		d.LogLevelChanged = true
		d.NewLogLevel = new.Server.LogLevel
	}

	op, np := old.Practice, new.Practice
	if op.WindowSize != np.WindowSize ||
		op.CorrectThreshold != np.CorrectThreshold ||
		op.CloseThreshold != np.CloseThreshold {
		d.ThresholdsChanged = true
	}
	if op.NormalRate != np.NormalRate || op.SlowRate != np.SlowRate {
		d.RatesChanged = true
	}
	if op.Voice != np.Voice || op.Language != np.Language {
		d.VoiceChanged = true
	}

	if old.Corpus.Path != new.Corpus.Path {
		d.CorpusChanged = true
	}

	return d
}
