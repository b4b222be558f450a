package primitives

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
)

// ComputeVersion returns cfg.Version when set. Otherwise it derives a short content
// hash so that two grammars with the same definition report the same version.
func ComputeVersion(cfg *GrammarConfig) string {
	if cfg.Version != "" {
		return cfg.Version
	}
	// GrammarConfig holds only strings, numbers and slices of them.
	data, _ := json.Marshal(cfg)
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:6])
}
