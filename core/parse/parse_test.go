package parse

import (
	"errors"
	"strings"
	"testing"

	"github.com/josephlewis42/minish/core/ast"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testEnv = map[string]string{
	"HOME": "/home/user",
	"USER": "bob",
	"?":    "3",
}

func convert(t *testing.T, src string) (ast.Node, error) {
	t.Helper()
	script, err := ParseString(src)
	require.NoError(t, err)
	require.Len(t, script.Lines, 1)

	c := NewConverter(func(name string) string { return testEnv[name] })
	return c.Line(script.Lines[0])
}

func TestConvert(t *testing.T) {
	cases := map[string]struct {
		src  string
		want ast.Node
	}{
		"simple": {
			src:  "echo hi",
			want: ast.Command("echo", "hi"),
		},
		"quoting and expansion": {
			src:  `echo "$HOME/x" '$HOME' $? ${USER}`,
			want: ast.Command("echo", "/home/user/x", "$HOME", "3", "bob"),
		},
		"pipe binds tighter than and": {
			src: "a | b && c",
			want: &ast.And{
				Left:  &ast.Pipe{Left: ast.Command("a"), Right: ast.Command("b")},
				Right: ast.Command("c"),
			},
		},
		"or": {
			src:  "a || b",
			want: &ast.Or{Left: ast.Command("a"), Right: ast.Command("b")},
		},
		"sequence chains left": {
			src: "a; b & c",
			want: &ast.Sequence{
				Left:       &ast.Sequence{Left: ast.Command("a"), Right: ast.Command("b")},
				Right:      ast.Command("c"),
				Background: true,
			},
		},
		"trailing background": {
			src:  "a &",
			want: &ast.Sequence{Left: ast.Command("a"), Background: true},
		},
		"subshell with redirection": {
			src: "(cd /tmp; pwd) > out",
			want: &ast.Subshell{
				Body: &ast.Sequence{Left: ast.Command("cd", "/tmp"), Right: ast.Command("pwd")},
				Redirect: ast.Redirect{
					Out: ast.OutRedirect{Mode: ast.OutTruncate, Path: "out"},
				},
			},
		},
		"input and append": {
			src: "cat < in >> log",
			want: &ast.Simple{
				Argv: []string{"cat"},
				Redirect: ast.Redirect{
					In:  ast.InRedirect{Mode: ast.InFile, Path: "in"},
					Out: ast.OutRedirect{Mode: ast.OutAppend, Path: "log"},
				},
			},
		},
		"here string": {
			src: "cat <<< word",
			want: &ast.Simple{
				Argv:     []string{"cat"},
				Redirect: ast.Redirect{In: ast.InRedirect{Mode: ast.InInline, Text: "word\n"}},
			},
		},
		"assignments see earlier assignments": {
			src: "A=1 B=$A env $A",
			want: &ast.Simple{
				Argv:    []string{"env", ""},
				Assigns: []ast.Assign{{Name: "A", Value: "1"}, {Name: "B", Value: "1"}},
			},
		},
		"bare redirection": {
			src: "> empty",
			want: &ast.Simple{
				Redirect: ast.Redirect{Out: ast.OutRedirect{Mode: ast.OutTruncate, Path: "empty"}},
			},
		},
	}

	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			got, err := convert(t, tc.src)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
			assert.NoError(t, ast.Validate(got))
		})
	}
}

func TestConvertHeredoc(t *testing.T) {
	c := NewConverter(func(name string) string { return testEnv[name] })

	script, err := ParseString("cat <<EOF\nhello $USER\nEOF\n")
	require.NoError(t, err)
	node, err := c.Line(script.Lines[0])
	require.NoError(t, err)
	assert.Equal(t, ast.InRedirect{Mode: ast.InInline, Text: "hello bob\n"}, node.(*ast.Simple).Redirect.In)

	script, err = ParseString("cat <<'EOF'\nhello $USER\nEOF\n")
	require.NoError(t, err)
	node, err = c.Line(script.Lines[0])
	require.NoError(t, err)
	assert.Equal(t, "hello $USER\n", node.(*ast.Simple).Redirect.In.Text)
}

func TestConvertUnsupported(t *testing.T) {
	cases := map[string]string{
		"negation":              "! true",
		"command substitution":  "echo $(date)",
		"if":                    "if true; then echo; fi",
		"stderr redirection":    "echo hi 2> err",
		"default expansion":     "echo ${x:-y}",
		"pipe all":              "a |& b",
		"duplicate descriptors": "echo hi >&2",
		"redirect all":          "echo hi &> out",
		"ansi-c quoting":        "echo $'a\\tb'",
		"locale quoting":        `echo $"hi"`,
		"test clause":           "[[ -n x ]]",
		"process substitution":  "cat <(echo hi)",
	}

	for name, src := range cases {
		t.Run(name, func(t *testing.T) {
			script, err := Parse(strings.NewReader(src), "")
			if err != nil {
				// Rejected by the parser itself.
				return
			}
			_, err = NewConverter(nil).Line(script.Lines[0])

			var syntaxErr *SyntaxError
			assert.True(t, errors.As(err, &syntaxErr), "got %v", err)
		})
	}
}

func TestSplitLines(t *testing.T) {
	script, err := ParseString("a; b &\nc\n\nd && e")
	require.NoError(t, err)

	var sizes []int
	for _, line := range script.Lines {
		sizes = append(sizes, len(line))
	}
	assert.Equal(t, []int{2, 1, 1}, sizes)
}

func TestParseError(t *testing.T) {
	_, err := ParseString("echo 'unterminated")
	assert.Error(t, err)
}

func TestSyntaxErrorMessage(t *testing.T) {
	err := &SyntaxError{Line: 1, Col: 6, Construct: "negation"}
	assert.Equal(t, "syntax error near 1:6: unsupported negation", err.Error())
}
