/*
Package ports defines the driven ports (interfaces) of the dumpling wizard.

These interfaces decouple the core logic from external implementations, allowing
the wizard to work with various storage backends and delivery services.

# Key Interfaces

  - StateStore: persists and loads session State.
  - DistributedLocker: distributed locking for concurrent session access.
  - RecipeGenerator: produces a RecipeResult from the collected answers.
  - DocumentRenderer, RecipeRecorder, Notifier: the print, save and email channels.
*/
package ports
