// Package fsmdef loads state machine definitions from YAML documents.
//
// A document lists the states, the initial and final states and the transitions of a
// machine. Handlers cannot be expressed in YAML, so transitions refer to them by name
// and the caller supplies the implementations through a Handlers map:
//
//	name: turnstile
//	states: [locked, unlocked]
//	initial: locked
//	transitions:
//	  - name: unlock
//	    from: locked
//	    event: coin
//	    to: unlocked
//	    handler: unlock
//
//	def, err := fsmdef.Load("turnstile.yaml", fsmdef.Handlers{"unlock": unlock})
//	machine, err := statemachine.Build(def)
//
// Decoding only checks the document itself (syntax, unknown fields, handler names).
// Structural validation of the resulting definition is done by statemachine.Build.
package fsmdef
