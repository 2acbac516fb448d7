// Package sigil provides an embeddable expression-template engine.
//
// Sigil templates mix literal text with {{ ... }} expression blocks:
//
//	Hello, {{ name }}! You have {{ count + 1 }} new messages.
//
// # Basic Usage
//
// Compile once, render many times:
//
//	engine := sigil.MustNew()
//	tmpl, err := engine.Compile("Hello, {{ name }}!")
//	if err != nil {
//	    // compile errors carry line/column information
//	}
//
//	env := sigil.NewEnv().BindString("name", "Ada")
//	out, err := tmpl.Render(env)
//	// out: "Hello, Ada!"
//
// For one-off renders, Engine.Render compiles and renders in one step.
//
// # Expressions
//
// Expression blocks evaluate strictly typed values: numbers (float64),
// strings, and booleans. Arithmetic (+ - * / %), comparisons
// (== != < <= > >=), and logical operators (and, or, not) follow the
// usual precedence, with parentheses for grouping:
//
//	{{ (price * quantity) + shipping }}
//	{{ name == "admin" or level >= 9 }}
//
// There is no implicit coercion and no truthiness: "a" + 1 is a type
// error, as is using a number where a condition expects a boolean.
// Strings convert to numbers only through the num function, and any
// value converts to a string through str.
//
// # Conditionals
//
// Branching uses if/elif/else chains closed by {{/fi}}:
//
//	{{ if count == 0 }}empty{{ elif count < 10 }}a few{{ else }}many{{/fi}}
//
// Conditions must evaluate to booleans. The first true branch renders;
// later conditions are never evaluated.
//
// # Environments
//
// An Env carries the variable bindings and functions a render may use.
// The engine never mutates an Env, and one Env can back any number of
// concurrent renders:
//
//	env := sigil.NewEnv().
//	    BindNumber("count", 3).
//	    BindBool("admin", true)
//
// NewEnv pre-registers the builtin functions (len, upper, lower, trim,
// contains, abs, round, floor, ceil, min, max, num, str); NewEmptyEnv
// starts blank.
//
// # Custom Functions
//
// Register functions on an Env to call them from expressions:
//
//	env.MustRegisterFunc(&sigil.Func{
//	    Name:    "double",
//	    MinArgs: 1,
//	    MaxArgs: 1,
//	    Fn: func(args []sigil.Value) (sigil.Value, error) {
//	        return sigil.Number(args[0].Number() * 2), nil
//	    },
//	})
//	// {{ double(21) }} renders "42"
//
// # Error Handling
//
// Compilation fails with lex or parse errors; rendering fails with
// type, name, arity, or arithmetic errors. All carry a source
// position and a stable kind, inspectable through ErrorKind,
// ErrorPosition, and the Is* predicates:
//
//	out, err := engine.Render("{{ 1 / 0 }}", nil)
//	if sigil.IsArithmeticError(err) {
//	    pos, _ := sigil.ErrorPosition(err)
//	    // pos: line 1, column 6
//	}
//
// # Template Storage
//
// Templates can be persisted through the TemplateStore interface with
// memory, filesystem, and PostgreSQL backends, wrapped by CachedStore
// for read-through caching. StoreEngine combines a store with an
// engine and caches compiled templates by version:
//
//	store := sigil.NewMemoryStore()
//	se := sigil.MustNewStoreEngine(sigil.StoreEngineConfig{Store: store})
//	err := se.SaveTemplate(ctx, &sigil.StoredTemplate{Name: "greeting", Source: "Hi {{ name }}!"})
//	out, err := se.RenderStored(ctx, "greeting", env)
//
// # Configuration
//
// Engines take functional options:
//
//	engine, err := sigil.New(
//	    sigil.WithLogger(logger),
//	    sigil.WithMaxOutputSize(1 << 20),
//	)
package sigil
