/*
Package workflow resolves the on-disk layout of a workflow.

A Location answers "where does workflow-relative stuff live": whether the workflow
runs from an editable (development) checkout or an installed copy, where its conda and
singularity prefixes are, and which environment definitions, profiles and scripts it
ships. Both a nested layout (<root>/workflow/envs) and a flat layout (<root>/envs) are
supported.
*/
package workflow
