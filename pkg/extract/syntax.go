package extract

import (
	"errors"
	"path"
	"strings"

	"github.com/evanw/esbuild/pkg/api"
)

// loaders maps script extensions to esbuild loaders. Plain JavaScript is
// parsed as JSX because React projects commonly keep JSX in .js files.
var loaders = map[string]api.Loader{
	".js":  api.LoaderJSX,
	".jsx": api.LoaderJSX,
	".mjs": api.LoaderJSX,
	".cjs": api.LoaderJSX,
	".ts":  api.LoaderTS,
	".mts": api.LoaderTS,
	".cts": api.LoaderTS,
	".tsx": api.LoaderTSX,
}

// checkSyntax parses a script with esbuild and reports the first syntax error.
func checkSyntax(rel, text string) error {
	loader, ok := loaders[strings.ToLower(path.Ext(rel))]
	if !ok {
		return nil
	}

	result := api.Transform(text, api.TransformOptions{
		Loader:     loader,
		Sourcefile: rel,
		LogLevel:   api.LogLevelSilent,
	})
	if len(result.Errors) == 0 {
		return nil
	}

	msg := result.Errors[0]
	perr := &ParseError{File: rel, Err: errors.New(msg.Text)}
	if msg.Location != nil {
		perr.Line = msg.Location.Line
		perr.Column = msg.Location.Column + 1
	}
	return perr
}
