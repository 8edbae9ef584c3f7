// Package logparse turns raw access-log lines into structured replay
// requests.
//
// The extractor recognizes one fixed log dialect: lines must carry an HTTP
// GET indicator and the install agent's source tag to qualify; qualifying
// lines are matched against the distribution path shape
// tpr/<product>/<folder>/<xx>/<yy>/<hex-id> with an optional .index
// suffix, and an optional bytes=<lower>-<upper> range. Non-qualifying
// lines are skipped silently. A qualifying line that does not yield a
// content path is a data-integrity error and fails the whole batch; replay
// correctness depends on complete extraction, so there is no partial
// success.
package logparse
