/*
Package domain contains the core domain models of the dumpling wizard.

It defines the step catalog, the navigation position and the persisted session state.
This package is kept pure and free of external dependencies like I/O or persistence,
following Hexagonal Architecture principles.

# Key Entities

  - IntroStep / ContentStep: closed sum types over the step variants of each phase.
  - Catalog: the ordered, immutable steps shared by every session.
  - Position: the two-index navigation cursor.
  - State: the runtime snapshot of a session (Position, Answers, Controls, Result).
  - View: derived presentation values (progress, title, title visibility).
*/
package domain
