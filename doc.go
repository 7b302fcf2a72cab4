/*
Package dumpling is the engine of an emotional recipe wizard: a short walk through
intro cards and questions that ends with a dumpling recipe which can be printed,
saved and emailed.

# Concept

A session moves through two phases. The intro phase shows hero, explanation and
quote cards in order. The content phase asks questions, shows interludes, lets the
user tune the dough and place the moment on a timeline. Advancing past a question
requires an answer; picking the custom option of a question also requires its text.
Once every content step is passed the session sits at the submit position and the
recipe can be generated.

Navigation is deterministic and never fails: moves past either end are absorbed.
Sessions are persisted after every change, so a user can leave and resume.

# Usage

	w, err := dumpling.New()
	if err != nil {
		log.Fatal(err)
	}

	ctx := context.Background()
	state, _ := w.Start(ctx, "")
	id := state.SessionID

	for {
		view, _ := w.View(ctx, id)
		if view.Completed {
			break
		}
		// Render view, collect answers with w.Answer / w.CustomAnswer / w.SetControls.
		if _, err := w.Next(ctx, id); errors.Is(err, domain.ErrAdvanceBlocked) {
			continue
		}
	}

	state, _ = w.Generate(ctx, id)
	notes, _ := w.Deliver(ctx, id, domain.ChannelPrint, domain.ChannelSave)

# Architecture

The core is pure: pkg/domain holds the types, internal/runtime the navigator and
the stateless engine. Storage, generation and delivery are ports (pkg/ports) with
adapters under pkg/adapters. Wizard glues them together and serializes every
read-modify-write per session.
*/
package dumpling
