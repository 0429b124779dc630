// Package textdoc provides the host document model for the suggestion
// engine: a revisioned plain-text buffer with style marks, block-kind
// classification, and position maps that carry stored offsets across
// edits.
//
// The document is mutated on a single logical thread (the editor event
// loop). Every mutation produces a Transaction whose PositionMap lets
// consumers translate offsets valid before the edit into offsets valid
// after it. Snapshots are immutable and safe to hand to goroutines.
package textdoc
