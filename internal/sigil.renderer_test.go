package internal

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mapResolver is a plain map binding for renderer tests
type mapResolver map[string]Value

func (m mapResolver) Resolve(name string) (Value, bool) {
	v, ok := m[name]
	return v, ok
}

func (m mapResolver) Names() []string {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	return names
}

// renderSource compiles and renders in one step for test brevity
func renderSource(t *testing.T, source string, vars mapResolver, funcs *FuncRegistry) (string, error) {
	t.Helper()
	root, err := ParseTemplate(source, nil)
	require.NoError(t, err)

	renderer := NewRenderer(vars, funcs, nil)
	return renderer.Render(root)
}

// requireRenderError renders and asserts failure with the given kind
func requireRenderError(t *testing.T, source string, vars mapResolver, funcs *FuncRegistry, kind RenderErrorKind) *RenderError {
	t.Helper()
	_, err := renderSource(t, source, vars, funcs)
	require.Error(t, err)

	var renderErr *RenderError
	require.ErrorAs(t, err, &renderErr)
	assert.Equal(t, kind, renderErr.Kind, "unexpected error kind: %s", renderErr.Message)
	return renderErr
}

func TestRenderer_PlainText(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{name: "simple text", input: "Hello, World!"},
		{name: "empty template", input: ""},
		{name: "multiline", input: "a\nb\nc"},
		{name: "single braces survive", input: "{a} { } }{ }}"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			output, err := renderSource(t, tt.input, nil, nil)
			require.NoError(t, err)
			assert.Equal(t, tt.input, output, "delimiter-free text must round-trip byte for byte")
		})
	}
}

func TestRenderer_OutputCoercion(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{name: "integral number", input: "{{ 7 }}", expected: "7"},
		{name: "fractional number", input: "{{ 2.5 }}", expected: "2.5"},
		{name: "negative decimal", input: "{{ -42.42 }}", expected: "-42.42"},
		{name: "string verbatim", input: `{{ "hi" }}`, expected: "hi"},
		{name: "boolean true", input: "{{ true }}", expected: "true"},
		{name: "boolean false", input: "{{ false }}", expected: "false"},
		{name: "escaped delimiter idiom", input: "{{'{{'}}", expected: "{{"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			output, err := renderSource(t, tt.input, nil, nil)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, output)
		})
	}
}

func TestRenderer_Arithmetic(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{name: "precedence", input: "{{ 1 + 2 * 3 }}", expected: "7"},
		{name: "grouping", input: "{{ (1 + 2) * 3 }}", expected: "9"},
		{name: "left associative subtraction", input: "{{ 10 - 3 - 2 }}", expected: "5"},
		{name: "division", input: "{{ 10 / 4 }}", expected: "2.5"},
		{name: "modulo", input: "{{ 7 % 3 }}", expected: "1"},
		{name: "unary minus", input: "{{ -(2 + 3) }}", expected: "-5"},
		{name: "double minus", input: "{{ 2--2 }}", expected: "4"},
		{name: "string concatenation", input: `{{ "a" + "b" }}`, expected: "ab"},
		{name: "concatenation chain", input: `{{ "a" + "b" + "c" }}`, expected: "abc"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			output, err := renderSource(t, tt.input, nil, nil)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, output)
		})
	}
}

func TestRenderer_Comparisons(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{name: "number equality", input: "{{ 1 == 1 }}", expected: "true"},
		{name: "number inequality", input: "{{ 1 != 2 }}", expected: "true"},
		{name: "less than", input: "{{ 1 < 2 }}", expected: "true"},
		{name: "less or equal", input: "{{ 2 <= 2 }}", expected: "true"},
		{name: "greater than", input: "{{ 3 > 2 }}", expected: "true"},
		{name: "greater or equal", input: "{{ 1 >= 2 }}", expected: "false"},
		{name: "string ordering", input: `{{ "a" < "b" }}`, expected: "true"},
		{name: "string equality", input: `{{ "x" == "x" }}`, expected: "true"},
		{name: "boolean equality", input: "{{ true == true }}", expected: "true"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			output, err := renderSource(t, tt.input, nil, nil)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, output)
		})
	}
}

func TestRenderer_Logical(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{name: "and true", input: "{{ true and true }}", expected: "true"},
		{name: "and false", input: "{{ true and false }}", expected: "false"},
		{name: "or false", input: "{{ false or false }}", expected: "false"},
		{name: "or true", input: "{{ false or true }}", expected: "true"},
		{name: "not", input: "{{ not false }}", expected: "true"},
		{name: "combined", input: "{{ not (true and false) or false }}", expected: "true"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			output, err := renderSource(t, tt.input, nil, nil)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, output)
		})
	}
}

func TestRenderer_ShortCircuit(t *testing.T) {
	t.Run("and skips the right side when left is false", func(t *testing.T) {
		// missing is unbound; evaluating it would be a name error.
		output, err := renderSource(t, "{{ false and missing }}", nil, nil)
		require.NoError(t, err)
		assert.Equal(t, "false", output)
	})

	t.Run("or skips the right side when left is true", func(t *testing.T) {
		output, err := renderSource(t, "{{ true or missing }}", nil, nil)
		require.NoError(t, err)
		assert.Equal(t, "true", output)
	})

	t.Run("and evaluates the right side when left is true", func(t *testing.T) {
		requireRenderError(t, "{{ true and missing }}", nil, nil, RenderErrName)
	})

	t.Run("short-circuit skips arithmetic errors too", func(t *testing.T) {
		output, err := renderSource(t, "{{ false and 1 / 0 == 1 }}", nil, nil)
		require.NoError(t, err)
		assert.Equal(t, "false", output)
	})
}

func TestRenderer_Variables(t *testing.T) {
	vars := mapResolver{
		"name":  StringValue("Ada"),
		"count": NumberValue(5),
		"ok":    BoolValue(true),
	}

	output, err := renderSource(t, "{{ name }} has {{ count }} ({{ ok }})", vars, nil)
	require.NoError(t, err)
	assert.Equal(t, "Ada has 5 (true)", output)
}

func TestRenderer_VariableInExpression(t *testing.T) {
	vars := mapResolver{"x": NumberValue(5)}

	output, err := renderSource(t, "{{ x * 2 + 1 }}", vars, nil)
	require.NoError(t, err)
	assert.Equal(t, "11", output)
}

func TestRenderer_UndefinedVariable(t *testing.T) {
	renderErr := requireRenderError(t, "{{ x }}", nil, nil, RenderErrName)
	assert.Contains(t, renderErr.Message, "undefined variable: x")
	assert.Equal(t, 4, renderErr.Position.Column)
}

func TestRenderer_UndefinedVariableSuggestions(t *testing.T) {
	t.Run("close names are suggested", func(t *testing.T) {
		vars := mapResolver{"name": StringValue("x"), "count": NumberValue(1)}
		renderErr := requireRenderError(t, "{{ nme }}", vars, nil, RenderErrName)
		assert.Contains(t, renderErr.Message, "Did you mean 'name'?")
	})

	t.Run("bound names are listed when nothing is close", func(t *testing.T) {
		vars := mapResolver{"alpha": NumberValue(1), "beta": NumberValue(2)}
		renderErr := requireRenderError(t, "{{ zzzzzzzzzz }}", vars, nil, RenderErrName)
		assert.Contains(t, renderErr.Message, "Available names:")
		assert.Contains(t, renderErr.Message, "'alpha'")
		assert.Contains(t, renderErr.Message, "'beta'")
	})
}

func TestRenderer_Conditionals(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		vars     mapResolver
		expected string
	}{
		{
			name:     "true branch renders",
			input:    "{{ if true }}A{{/fi}}",
			expected: "A",
		},
		{
			name:     "false branch skips",
			input:    "{{ if false }}A{{/fi}}",
			expected: "",
		},
		{
			name:     "first matching branch wins",
			input:    "{{ if false }}A{{ elif true }}B{{ else }}C{{/fi}}",
			expected: "B",
		},
		{
			name:     "else when nothing matches",
			input:    "{{ if false }}A{{ elif false }}B{{ else }}C{{/fi}}",
			expected: "C",
		},
		{
			name:     "all false without else is empty",
			input:    "x{{ if false }}A{{ elif false }}B{{/fi}}y",
			expected: "xy",
		},
		{
			name:     "condition from variables",
			input:    "{{ if count > 3 }}many{{ else }}few{{/fi}}",
			vars:     mapResolver{"count": NumberValue(5)},
			expected: "many",
		},
		{
			name:     "nested conditionals",
			input:    "{{ if true }}a{{ if false }}b{{ else }}c{{/fi}}d{{/fi}}",
			expected: "acd",
		},
		{
			name:     "expressions inside branches",
			input:    "{{ if true }}{{ 1 + 1 }}{{/fi}}",
			expected: "2",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			output, err := renderSource(t, tt.input, tt.vars, nil)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, output)
		})
	}
}

func TestRenderer_ConditionalLaterBranchesUntouched(t *testing.T) {
	// Once a branch matches, later conditions must not be evaluated:
	// the elif condition here would fail with a name error.
	output, err := renderSource(t, "{{ if true }}A{{ elif missing }}B{{/fi}}", nil, nil)
	require.NoError(t, err)
	assert.Equal(t, "A", output)
}

func TestRenderer_ConditionNotBoolean(t *testing.T) {
	renderErr := requireRenderError(t, "{{ if 1 }}A{{/fi}}", nil, nil, RenderErrType)
	assert.Contains(t, renderErr.Message, "condition must be a boolean")
	assert.Contains(t, renderErr.Message, "number")
}

func TestRenderer_TypeErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{name: "string plus number", input: `{{ "a" + 1 }}`},
		{name: "number less than string", input: `{{ 1 < "a" }}`},
		{name: "booleans do not order", input: "{{ true < false }}"},
		{name: "cross-kind equality", input: `{{ 1 == "1" }}`},
		{name: "not on a number", input: "{{ not 5 }}"},
		{name: "minus on a string", input: `{{ -"a" }}`},
		{name: "and on numbers", input: "{{ 1 and 2 }}"},
		{name: "or right side not boolean", input: "{{ false or 1 }}"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			requireRenderError(t, tt.input, nil, nil, RenderErrType)
		})
	}
}

func TestRenderer_ArithmeticErrors(t *testing.T) {
	t.Run("division by zero", func(t *testing.T) {
		renderErr := requireRenderError(t, "{{ 1 / 0 }}", nil, nil, RenderErrArithmetic)
		assert.Contains(t, renderErr.Message, "division by zero")
		assert.Equal(t, 6, renderErr.Position.Column)
	})

	t.Run("modulo by zero", func(t *testing.T) {
		renderErr := requireRenderError(t, "{{ 5 % 0 }}", nil, nil, RenderErrArithmetic)
		assert.Contains(t, renderErr.Message, "modulo by zero")
	})

	t.Run("divisor evaluated from variables", func(t *testing.T) {
		vars := mapResolver{"d": NumberValue(0)}
		requireRenderError(t, "{{ 10 / d }}", vars, nil, RenderErrArithmetic)
	})
}

func TestRenderer_FunctionCalls(t *testing.T) {
	funcs := NewFuncRegistry()
	funcs.MustRegister(&Func{
		Name:    "double",
		MinArgs: 1,
		MaxArgs: 1,
		Fn: func(args []Value) (Value, error) {
			if !args[0].IsNumber() {
				return Value{}, newFuncArgTypeError("double", 0, ErrMsgFuncExpectedNum, args[0].Kind())
			}
			return NumberValue(args[0].Number() * 2), nil
		},
	})

	t.Run("call renders its result", func(t *testing.T) {
		output, err := renderSource(t, "{{ double(21) }}", nil, funcs)
		require.NoError(t, err)
		assert.Equal(t, "42", output)
	})

	t.Run("call result feeds expressions", func(t *testing.T) {
		output, err := renderSource(t, "{{ double(3) + 1 }}", nil, funcs)
		require.NoError(t, err)
		assert.Equal(t, "7", output)
	})

	t.Run("arguments evaluate before the call", func(t *testing.T) {
		output, err := renderSource(t, "{{ double(1 + 2) }}", nil, funcs)
		require.NoError(t, err)
		assert.Equal(t, "6", output)
	})

	t.Run("missing argument is an arity error", func(t *testing.T) {
		renderErr := requireRenderError(t, "{{ double() }}", nil, funcs, RenderErrArity)
		assert.Contains(t, renderErr.Message, "double")
		assert.Contains(t, renderErr.Message, "expected 1, got 0")
	})

	t.Run("surplus argument is an arity error", func(t *testing.T) {
		requireRenderError(t, "{{ double(1, 2) }}", nil, funcs, RenderErrArity)
	})

	t.Run("wrong argument kind is a type error", func(t *testing.T) {
		requireRenderError(t, `{{ double("x") }}`, nil, funcs, RenderErrType)
	})

	t.Run("unknown function is a name error with suggestion", func(t *testing.T) {
		renderErr := requireRenderError(t, "{{ duble(2) }}", nil, funcs, RenderErrName)
		assert.Contains(t, renderErr.Message, "undefined function: duble")
		assert.Contains(t, renderErr.Message, "Did you mean 'double'?")
	})

	t.Run("argument errors surface before the call", func(t *testing.T) {
		requireRenderError(t, "{{ double(missing) }}", nil, funcs, RenderErrName)
	})
}

func TestRenderer_BuiltinsThroughTemplates(t *testing.T) {
	funcs := NewFuncRegistry()
	RegisterBuiltins(funcs)

	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{name: "upper", input: `{{ upper("abc") }}`, expected: "ABC"},
		{name: "len in arithmetic", input: `{{ len("hello") * 2 }}`, expected: "10"},
		{name: "nested calls", input: `{{ upper(trim("  hi  ")) }}`, expected: "HI"},
		{name: "num conversion enables addition", input: `{{ num("2") + 1 }}`, expected: "3"},
		{name: "str conversion enables concatenation", input: `{{ "n=" + str(4) }}`, expected: "n=4"},
		{name: "min max", input: "{{ min(3, 1, 2) + max(1, 5) }}", expected: "6"},
		{name: "contains in condition", input: `{{ if contains("hello", "ell") }}yes{{/fi}}`, expected: "yes"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			output, err := renderSource(t, tt.input, nil, funcs)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, output)
		})
	}
}

func TestRenderer_AbortsOnFirstError(t *testing.T) {
	root, err := ParseTemplate("before {{ 1 / 0 }} after", nil)
	require.NoError(t, err)

	renderer := NewRenderer(nil, nil, nil)
	output, err := renderer.Render(root)
	require.Error(t, err)
	assert.Empty(t, output, "failed renders must not leak partial output")
}

func TestRenderer_DocumentOrder(t *testing.T) {
	vars := mapResolver{"x": NumberValue(1), "y": NumberValue(2)}

	output, err := renderSource(t, "a{{ x }}b{{ y }}c{{ x + y }}d", vars, nil)
	require.NoError(t, err)
	assert.Equal(t, "a1b2c3d", output)
}

func TestRenderer_NilRoot(t *testing.T) {
	renderer := NewRenderer(nil, nil, nil)
	_, err := renderer.Render(nil)
	require.Error(t, err)
}

func TestRenderErrorKind_String(t *testing.T) {
	assert.Equal(t, "TypeError", RenderErrType.String())
	assert.Equal(t, "NameError", RenderErrName.String())
	assert.Equal(t, "ArityError", RenderErrArity.String())
	assert.Equal(t, "ArithmeticError", RenderErrArithmetic.String())
}
