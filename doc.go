/*
Package templeton is a small text templating engine with iterators, conditionals
and extensible block helpers.

A template is plain text containing markers:

	{{key}}              escaped interpolation
	{{{key}}}            raw interpolation
	{{key|upper|html}}   helper pipe chain, applied left to right
	{{key|replace:a:b}}  helper with colon separated arguments
	{{@key}}             lookup through a registered ref sigil
	{{#each items}}...{{/each}}
	{{#if flag}}...{{:else}}...{{/if}}
	{{#items}}...{{/items}} iterates sequences, otherwise acts as a conditional

Keys are dotted or bracketed paths into the data ("a.b.c", "a['b c']") and "."
refers to the current value. A key that cannot be resolved is not an error: the
marker is copied to the output unchanged.

Inside an each block the extended keys "~" (the enclosing data), "__path__"
(the enclosing path) and "__key__" (the current entry's key) are available
unless disabled with WithExtendedKeys(false).

Rendering is performed by an Engine, which owns its helper, block and ref
registries. Configure an Engine before rendering with it; registration is not
synchronised with concurrent renders.
*/
package templeton
