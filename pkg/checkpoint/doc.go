// Package checkpoint provides functionality for saving and resuming export progress.
//
// The checkpoint system allows the exporter to resume after interruptions
// such as network failures, rate limits, or manual stops. It tracks:
//   - The pagination cursor for each data phase
//   - The last processed object index for each association phase
//   - Completion markers for phases that drained naturally
//
// Checkpoints are plain text files under a configurable directory, one file
// per phase. Files are written atomically (temp file, fsync, rename) to
// prevent corruption, and a file that fails to parse is treated as absent so
// the phase restarts from the beginning rather than resuming from bad state.
package checkpoint
