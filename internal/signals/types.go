package signals

// #region config

// ProducerConfig holds the keyword lists and window used for signal counting.
type ProducerConfig struct {
	Window        int // number of most recent events inspected
	StressTerms   []string
	RecoveryTerms []string
	CaffeineTerms []string
}

// DefaultProducerConfig returns the standard 12-event window and keyword sets.
func DefaultProducerConfig() ProducerConfig {
	return ProducerConfig{
		Window:        12,
		StressTerms:   []string{"stress", "overwhelm", "anxious", "tense", "activated", "worse", "panic", "rushed"},
		RecoveryTerms: []string{"better", "calm", "rested", "recover", "relief", "relaxed", "steady"},
		CaffeineTerms: []string{"caffeine", "coffee", "espresso", "energy drink", "matcha"},
	}
}

// #endregion config

// #region counts

// Counts is the per-category number of recent events mentioning a signal.
type Counts struct {
	Stress   int `json:"stress"`
	Recovery int `json:"recovery"`
	Caffeine int `json:"caffeine"`
}

// NetStress is max(0, stress - recovery).
func (c Counts) NetStress() int {
	if d := c.Stress - c.Recovery; d > 0 {
		return d
	}
	return 0
}

// #endregion counts
