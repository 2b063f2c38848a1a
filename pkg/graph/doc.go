/*
Package graph holds the mutable block graph and evaluates it.

A Graph is an arena of nodes keyed by stable string ids plus a link table keyed
by target input port. Mutations (AddNode, RemoveNode, AddLink, RemoveLink) are
validated and applied atomically under the graph lock; a rejected mutation
leaves the graph untouched.

Evaluation works on an immutable Plan captured under the lock. Input nodes are
sensed first, Process nodes are relaxed for a bounded number of passes in
best-effort topological order (cycles are allowed), and finally every Output
node whose trigger is high fires once.
*/
package graph
