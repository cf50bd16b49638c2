/*
Package domain contains the core types shared by the snk packages.

It describes the things a workflow directory declares (environment definitions,
cluster profiles, helper scripts) and the outcome of acting on them. The package is
kept free of I/O so it can be used by both the workflow locator and the orchestrator.

# Key Entities

  - EnvironmentDefinition: one conda environment file discovered in a workflow.
  - CreationResult / Batch: the outcome of materializing one or many environments.
  - Profile: a cluster profile directory holding a config.yaml.
  - Script: a helper script shipped with the workflow.
*/
package domain
