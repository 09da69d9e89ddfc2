// Package domain defines the data model for one turn of play: the session
// state owned by the store, the immutable turn record, the classified player
// intent, the skill-check protocol types, and the safety assessment produced
// by the gate.
//
// Types here carry no behavior beyond construction and validation. All
// mutation of session state goes through the storage interfaces; all side
// effects go through the tool harness.
package domain
