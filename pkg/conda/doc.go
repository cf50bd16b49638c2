/*
Package conda builds handles on workflow conda environments.

The workflow engine changed how environments are constructed between major versions.
A Factory probes the engine version once and picks a Protocol:

  - LegacyProtocol (engine < 8) supplies the two values environment construction
    needs (resolved prefix directory, archive directory) plus a frontend choice.
  - CurrentProtocol (engine >= 8) is not supported yet and fails with
    domain.ErrUnimplemented instead of silently behaving like the legacy one.

An Env reports its on-disk address and materializes itself by delegating to the
conda frontend (mamba when available, conda otherwise).
*/
package conda
