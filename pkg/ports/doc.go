/*
Package ports defines the driven ports (interfaces) used by the snk core.

These interfaces decouple environment management from the operating system and from
optional coordination backends, so the orchestrator can be tested with fakes.

# Key Interfaces

  - CommandRunner: runs external programs (conda frontends, user shells, scripts).
  - DistributedLocker: serializes creation of the same environment across invocations.
*/
package ports
