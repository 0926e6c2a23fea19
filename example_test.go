package templeton_test

import (
	"fmt"
	"log"
	"strings"

	"github.com/developit/templeton"
)

func ExampleRender() {
	out, err := templeton.Render(
		"<ul>{{#each users}}<li>{{name}}{{#if admin}} (admin){{/if}}</li>{{/each}}</ul>",
		map[string]any{"users": []any{
			map[string]any{"name": "Ada", "admin": true},
			map[string]any{"name": "<Bob>"},
		}},
	)
	if err != nil {
		log.Fatal(err)
	}
	fmt.Println(out)
	// Output: <ul><li>Ada (admin)</li><li>&lt;Bob&gt;</li></ul>
}

func ExampleEngine_RegisterRef() {
	e := templeton.MustNew()
	if err := e.RegisterRef('@', templeton.PrefixRef("i18n.en")); err != nil {
		log.Fatal(err)
	}
	out, _ := e.Render("{{@greeting}}, {{name}}!", map[string]any{
		"name": "Ada",
		"i18n": map[string]any{"en": map[string]any{"greeting": "Hello"}},
	})
	fmt.Println(out)
	// Output: Hello, Ada!
}

func ExampleWithHelper() {
	e := templeton.MustNew(templeton.WithHelper("shout", func(v any, args ...string) (any, error) {
		return strings.ToUpper(fmt.Sprint(v)) + strings.Repeat("!", len(args)+1), nil
	}))
	out, _ := e.Render("{{greeting|shout:twice}}", map[string]any{"greeting": "hi"})
	fmt.Println(out)
	// Output: HI!!
}

func ExampleResolvePath() {
	data := map[string]any{"a": map[string]any{"b": []any{"x", "y"}}}
	fmt.Println(templeton.ResolvePath(data, "a.b[1]", nil))
	fmt.Println(templeton.ResolvePath(data, "a['b'].length", nil))
	fmt.Println(templeton.ResolvePath(data, "a.c", "fallback"))
	// Output:
	// y
	// 2
	// fallback
}

func ExampleKeys() {
	fmt.Println(templeton.Keys("{{title}} {{#each posts}}{{author.name}}{{/each}}"))
	// Output: [title posts author]
}
