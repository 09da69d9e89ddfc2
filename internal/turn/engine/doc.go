// Package engine drives the node pipeline that produces one turn: Scene
// Frame, Intent Intake, Safety Gate, Check Planner, Narrative Weaver, in
// that order.
//
// Each node reads what it needs from the shared execution context, writes
// only its designated output field, and appends exactly one audit entry
// before returning. The orchestrator enforces the audit contract, wraps each
// node in a trace span, and propagates node errors unmodified; there is no
// node-level retry.
//
// Safety escalation never aborts the pipeline. Downstream nodes treat it as
// a constraint and the weaver produces a redirecting, in-fiction response,
// because players must always receive some narrative reply.
package engine
