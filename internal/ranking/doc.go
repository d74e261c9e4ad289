// Package ranking provides the match weights used to score leaderboard
// search candidates, with deploy-time calibration support.
//
// Basic Usage:
//
//	// Load calibration (typically at startup)
//	weights, err := ranking.LoadCalibration("configs/ranking.calibration.json")
//	if err != nil {
//		log.Warn("using default weights", "error", err)
//	}
//
//	// Score one candidate field against a lowercased search term
//	points := ranking.FieldMatch(strings.ToLower(username), term, weights.Username)
//
// Tiers:
//
// Each text field has three tiers: exact, prefix and substring. Only the
// highest applicable tier fires per field; contributions from different
// fields are summed by the caller.
//
// Calibration:
//
// Weights can be tuned via a JSON file loaded at startup. Partial files are
// merged over the defaults, so a file may override a single tier. A restart
// is required to pick up changes. See configs/ranking.calibration.json.
package ranking
