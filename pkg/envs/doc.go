/*
Package envs orchestrates the lifecycle of a workflow's conda environments.

A Manager resolves environment definitions through a workflow.Location, asks a
HandleFactory for a fresh handle per definition and performs the requested
operation: list, show, create (in parallel, with per-environment failure isolation),
run a command inside, activate an interactive shell, or remove.

Per environment the states are Defined (a definition exists) and Materialized (its
address exists on disk). Create moves Defined to Materialized; Run and Activate do so
implicitly; Remove moves back to Defined.
*/
package envs
