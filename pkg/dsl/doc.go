/*
Package dsl provides a fluent builder for constructing workflow definitions
programmatically.

It lets developers define calling scenarios in type-safe Go instead of the
YAML documents, which is useful for unit tests, generated workflows and IDE
autocompletion.

Example usage:

	b := dsl.New("eligibility_verification").
		Persona("Sarah", "billing assistant", "Acme Health").
		Entity("patient").
		Require("first_name")

	b.State("greeting").
		System("Greet the office. The patient is {{.first_name}}.").
		Access("first_name").
		AllowTo("verify", "end_call").
		Entry().
		On([]string{"hold", "one moment"}, "on_hold", "hold_detected")

	b.State("verify").
		System("Verify eligibility for {{.first_name}}.").
		Access("first_name").
		Tools("lookup_member").
		AllowTo("greeting")

	b.State("on_hold").
		System("Wait quietly until the contact returns.")

	s, err := b.Build()

The resulting schema is identical to one loaded from the equivalent YAML, so
every load-time validation applies.
*/
package dsl
