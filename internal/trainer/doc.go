// Package trainer runs practice sessions on top of the round engine. It
// grades every player decision against basic strategy and the deviation
// table, keeps accuracy statistics and an undo history, and handles the
// steps that need no decision (split cards, advancing, the dealer turn).
package trainer
