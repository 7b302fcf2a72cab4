/*
Package runner drives a dumpling wizard session from a terminal or a pipe.

The Runner renders the current step, reads one command per line, and applies it
through the wizard facade. Interaction is abstracted by an IOHandler so the same
loop serves humans (TextHandler, markdown rendered with glamour) and programs
(JSONHandler, one JSON frame per line).

# Commands

	<enter> | next           advance one step
	back                     go back one step
	<n> | <option>           answer the current question or timeline step
	custom <text>            answer with the custom option and its free text
	set key=value ...        tune a controls step (temperature, shape, flavor, enhancer, dietary)
	contact <email>          set the delivery address
	generate                 cook the recipe at the submit position
	deliver [channels...]    print, save or email the recipe
	reset                    start over
	quit

# Usage

	r := runner.NewRunner(wizard,
		runner.WithSessionID("user-1"),
		runner.WithHandler(runner.NewTextHandler(os.Stdin, os.Stdout)),
	)
	state, err := r.Run(ctx)
*/
package runner
