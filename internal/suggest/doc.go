// Package suggest implements the overlay suggestion engine: a store of
// pending AI-proposed range modifications tracked against a live
// document, commands to accept or clear them, and projection of the
// pending state into render decorations. Modifications are displayed as
// overlays only; the document is mutated when a suggestion is accepted,
// never before.
package suggest
