/*
Package snk manages the conda environments that ship with a workflow.

A workflow declares its software in environment definition files under its envs
folder. snk locates the workflow on disk, derives a deterministic address for
each definition and materializes, activates or removes the environments with the
conda frontend found on PATH (mamba when available).

# Layout

  - pkg/workflow resolves a workflow root and the folders it ships.
  - pkg/conda builds environment handles for the installed engine version.
  - pkg/envs orchestrates listing, running, activation, parallel creation and removal.
  - cmd/snk is the command line entry point.

# Usage

	snk --dir ./rnaseq env list
	snk env create -w 4
	snk env run python which python
	snk env activate python
	snk env remove -f
*/
package snk
